package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/db"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
)

// ResultRepository reads KCSE subject results
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// GetSubjectResults returns a student's subject results
func (r *ResultRepository) GetSubjectResults(ctx context.Context, studentID int64) ([]models.SubjectResult, error) {
	rows, err := db.Conn(ctx, r.db).Query(ctx, `
		SELECT subject_code, subject_name, grade, points
		FROM kcse_results
		WHERE student_id = $1
		ORDER BY subject_code
	`, studentID)
	if err != nil {
		return nil, apperrors.NewStorageError("list subject results", err)
	}
	defer rows.Close()

	var results []models.SubjectResult
	for rows.Next() {
		var res models.SubjectResult
		if err := rows.Scan(&res.SubjectCode, &res.SubjectName, &res.Grade, &res.Points); err != nil {
			return nil, apperrors.NewStorageError("scan subject result", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list subject results", err)
	}
	return results, nil
}

// StudentExists reports whether a student row exists
func (r *ResultRepository) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError("check student", err)
	}
	return exists, nil
}
