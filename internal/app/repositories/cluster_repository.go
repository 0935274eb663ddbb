package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/db"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/dberrors"
)

// ClusterRepository reads cluster reference data and the programme-cluster mapping
type ClusterRepository struct {
	db *pgxpool.Pool
}

// NewClusterRepository creates a new cluster repository
func NewClusterRepository(db *pgxpool.Pool) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// GetCluster retrieves a cluster without its requirements
func (r *ClusterRepository) GetCluster(ctx context.Context, id int64) (*models.Cluster, error) {
	var c models.Cluster
	err := db.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, code, name FROM clusters WHERE id = $1`, id,
	).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrClusterNotFound
		}
		return nil, apperrors.NewStorageError("get cluster", err)
	}
	return &c, nil
}

// GetClusterIDsForProgramme returns the clusters a programme is mapped to, lowest ID first
func (r *ClusterRepository) GetClusterIDsForProgramme(ctx context.Context, programmeID int64) ([]int64, error) {
	rows, err := db.Conn(ctx, r.db).Query(ctx,
		`SELECT cluster_id FROM programme_cluster_map WHERE programme_id = $1 ORDER BY cluster_id`, programmeID)
	if err != nil {
		return nil, apperrors.NewStorageError("list programme clusters", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorageError("scan programme cluster", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list programme clusters", err)
	}
	return ids, nil
}

// GetRequirements returns a cluster's subject requirements
func (r *ClusterRepository) GetRequirements(ctx context.Context, clusterID int64) ([]models.ClusterSubjectRequirement, error) {
	rows, err := db.Conn(ctx, r.db).Query(ctx, `
		SELECT id, cluster_id, subject_code, subject_name, min_points, alternative_group
		FROM cluster_subject_requirements
		WHERE cluster_id = $1
		ORDER BY id
	`, clusterID)
	if err != nil {
		return nil, apperrors.NewStorageError("list cluster requirements", err)
	}
	defer rows.Close()

	var reqs []models.ClusterSubjectRequirement
	for rows.Next() {
		var req models.ClusterSubjectRequirement
		if err := rows.Scan(
			&req.ID,
			&req.ClusterID,
			&req.SubjectCode,
			&req.SubjectName,
			&req.MinPoints,
			&req.AlternativeGroup,
		); err != nil {
			return nil, apperrors.NewStorageError("scan cluster requirement", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list cluster requirements", err)
	}
	return reqs, nil
}

// UpsertCluster inserts a cluster by code, returning the existing ID when already present
func (r *ClusterRepository) UpsertCluster(ctx context.Context, c *models.Cluster) error {
	return db.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO clusters (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, c.Code, c.Name).Scan(&c.ID)
}

// ReplaceRequirements swaps a cluster's requirement set
func (r *ClusterRepository) ReplaceRequirements(ctx context.Context, clusterID int64, reqs []models.ClusterSubjectRequirement) error {
	conn := db.Conn(ctx, r.db)
	if _, err := conn.Exec(ctx, `DELETE FROM cluster_subject_requirements WHERE cluster_id = $1`, clusterID); err != nil {
		return apperrors.NewStorageError("clear cluster requirements", err)
	}

	for _, req := range reqs {
		if _, err := conn.Exec(ctx, `
			INSERT INTO cluster_subject_requirements (cluster_id, subject_code, subject_name, min_points, alternative_group)
			VALUES ($1, $2, $3, $4, $5)
		`, clusterID, req.SubjectCode, req.SubjectName, req.MinPoints, req.AlternativeGroup); err != nil {
			return apperrors.NewStorageError("insert cluster requirement", err)
		}
	}
	return nil
}
