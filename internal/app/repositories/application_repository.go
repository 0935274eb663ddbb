package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/db"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/dberrors"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

// ApplicationRepository handles database operations for applications
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, student_id, programme_id, cluster_id, choice_order, application_date, status, cluster_score, updated_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app    models.Application
		status string
	)
	if err := row.Scan(
		&app.ID,
		&app.StudentID,
		&app.ProgrammeID,
		&app.ClusterID,
		&app.ChoiceOrder,
		&app.ApplicationDate,
		&status,
		&app.ClusterScore,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := models.ParseApplicationStatus(status)
	if err != nil {
		return nil, err
	}
	app.Status = parsed

	return &app, nil
}

func collectApplications(rows pgx.Rows) ([]*models.Application, error) {
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Create inserts a new application and fills in its generated fields
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (student_id, programme_id, cluster_id, choice_order, application_date, status, cluster_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, updated_at
	`

	err := db.Conn(ctx, r.db).QueryRow(ctx, query,
		app.StudentID,
		app.ProgrammeID,
		app.ClusterID,
		app.ChoiceOrder,
		app.ApplicationDate,
		string(app.Status),
		app.ClusterScore,
	).Scan(&app.ID, &app.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("student, programme or cluster not found")
		}
		if dberrors.IsDuplicateConstraintError(err, "applications_student_programme_key") {
			return apperrors.NewConflictError("student has already applied for this programme")
		}
		return apperrors.NewStorageError("create application", err)
	}

	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.NewStorageError("get application", err)
	}

	return app, nil
}

// ListPending returns every pending application. Ranking is applied by the caller.
func (r *ApplicationRepository) ListPending(ctx context.Context) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY id`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query, string(models.StatusPending))
	if err != nil {
		return nil, apperrors.NewStorageError("list pending applications", err)
	}

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, apperrors.NewStorageError("scan pending applications", err)
	}
	return apps, nil
}

// List returns a page of applications, optionally filtered by status, with the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	var statusArg *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusArg = &s
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM applications WHERE ($1::text IS NULL OR status = $1)`
	if err := db.Conn(ctx, r.db).QueryRow(ctx, countQuery, statusArg).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("count applications", err)
	}

	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := db.Conn(ctx, r.db).Query(ctx, query, statusArg, limit, offset)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("list applications", err)
	}

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("scan applications", err)
	}
	return apps, total, nil
}

// ListByStudent returns a student's applications in choice order
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE student_id = $1 ORDER BY choice_order, id`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query, studentID)
	if err != nil {
		return nil, apperrors.NewStorageError("list student applications", err)
	}

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, apperrors.NewStorageError("scan student applications", err)
	}
	return apps, nil
}

// LockStatus reads the current status under a row lock held until the
// surrounding transaction ends.
func (r *ApplicationRepository) LockStatus(ctx context.Context, id int64) (models.ApplicationStatus, error) {
	var status string
	err := db.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return "", apperrors.ErrApplicationNotFound
		}
		return "", apperrors.NewStorageError("lock application", err)
	}

	return models.ParseApplicationStatus(status)
}

// UpdateStatus moves an application from one status to another. It fails with
// ErrConcurrentModification when the row is no longer in the expected status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `
		UPDATE applications
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to))
	if err != nil {
		return apperrors.NewStorageError("update application status", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("application %d is no longer %s: %w", id, from, apperrors.ErrConcurrentModification)
	}

	return nil
}

// UpdateScore stores a re-evaluated cluster score on a pending application
func (r *ApplicationRepository) UpdateScore(ctx context.Context, id int64, score float64) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `
		UPDATE applications
		SET cluster_score = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, score, string(models.StatusPending))
	if err != nil {
		return apperrors.NewStorageError("update application score", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("application %d is no longer pending: %w", id, apperrors.ErrConcurrentModification)
	}

	return nil
}
