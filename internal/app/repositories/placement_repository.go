package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/db"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/dberrors"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

// PlacementRepository handles database operations for placements
type PlacementRepository struct {
	db *pgxpool.Pool
}

// NewPlacementRepository creates a new placement repository
func NewPlacementRepository(db *pgxpool.Pool) *PlacementRepository {
	return &PlacementRepository{db: db}
}

const placementColumns = `id, student_id, programme_id, university_id, offering_id, application_id, year, created_at`

func scanPlacement(row pgx.Row) (*models.Placement, error) {
	var p models.Placement
	if err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.ProgrammeID,
		&p.UniversityID,
		&p.OfferingID,
		&p.ApplicationID,
		&p.Year,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPlacements(rows pgx.Rows) ([]*models.Placement, error) {
	defer rows.Close()

	var placements []*models.Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return placements, nil
}

// Create inserts a placement. A second placement for the same application
// violates placements_application_id_key and is reported as a concurrent modification.
func (r *PlacementRepository) Create(ctx context.Context, p *models.Placement) error {
	query := `
		INSERT INTO placements (student_id, programme_id, university_id, offering_id, application_id, year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := db.Conn(ctx, r.db).QueryRow(ctx, query,
		p.StudentID, p.ProgrammeID, p.UniversityID, p.OfferingID, p.ApplicationID, p.Year,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "placements_application_id_key") {
			return apperrors.ErrConcurrentModification
		}
		return apperrors.NewStorageError("create placement", err)
	}

	return nil
}

// GetByID retrieves a placement by ID
func (r *PlacementRepository) GetByID(ctx context.Context, id int64) (*models.Placement, error) {
	query := `SELECT ` + placementColumns + ` FROM placements WHERE id = $1`

	p, err := scanPlacement(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPlacementNotFound
		}
		return nil, apperrors.NewStorageError("get placement", err)
	}
	return p, nil
}

// Delete removes a placement and returns the deleted row so the caller can release its seat.
func (r *PlacementRepository) Delete(ctx context.Context, id int64) (*models.Placement, error) {
	query := `DELETE FROM placements WHERE id = $1 RETURNING ` + placementColumns

	p, err := scanPlacement(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPlacementNotFound
		}
		return nil, apperrors.NewStorageError("delete placement", err)
	}
	return p, nil
}

// List returns a page of placements, optionally filtered by year
func (r *PlacementRepository) List(ctx context.Context, filter models.PlacementFilter) ([]*models.Placement, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM placements WHERE ($1::int IS NULL OR year = $1)`, filter.Year,
	).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("count placements", err)
	}

	query := `
		SELECT ` + placementColumns + `
		FROM placements
		WHERE ($1::int IS NULL OR year = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := db.Conn(ctx, r.db).Query(ctx, query, filter.Year, limit, offset)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("list placements", err)
	}

	placements, err := collectPlacements(rows)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("scan placements", err)
	}
	return placements, total, nil
}

// ListByStudent returns every placement of a student
func (r *PlacementRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Placement, error) {
	query := `SELECT ` + placementColumns + ` FROM placements WHERE student_id = $1 ORDER BY year DESC, id`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query, studentID)
	if err != nil {
		return nil, apperrors.NewStorageError("list student placements", err)
	}

	placements, err := collectPlacements(rows)
	if err != nil {
		return nil, apperrors.NewStorageError("scan student placements", err)
	}
	return placements, nil
}
