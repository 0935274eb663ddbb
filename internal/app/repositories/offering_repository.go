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
)

// OfferingRepository is the capacity ledger: it owns filled_slots on
// university_programmes and only ever changes it through single conditional updates.
type OfferingRepository struct {
	db *pgxpool.Pool
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringColumns = `up.id, up.university_id, up.programme_id, up.capacity, up.filled_slots, u.name`

func scanOffering(row pgx.Row) (*models.Offering, error) {
	var o models.Offering
	if err := row.Scan(&o.ID, &o.UniversityID, &o.ProgrammeID, &o.Capacity, &o.FilledSlots, &o.UniversityName); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOfferings returns every university offering of a programme ordered by ID.
func (r *OfferingRepository) ListOfferings(ctx context.Context, programmeID int64) ([]*models.Offering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM university_programmes up
		JOIN universities u ON u.id = up.university_id
		WHERE up.programme_id = $1
		ORDER BY up.id
	`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query, programmeID)
	if err != nil {
		return nil, apperrors.NewStorageError("list offerings", err)
	}
	defer rows.Close()

	var offerings []*models.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan offering", err)
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list offerings", err)
	}

	return offerings, nil
}

// GetOffering retrieves one offering by ID
func (r *OfferingRepository) GetOffering(ctx context.Context, id int64) (*models.Offering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM university_programmes up
		JOIN universities u ON u.id = up.university_id
		WHERE up.id = $1
	`

	o, err := scanOffering(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, apperrors.NewStorageError("get offering", err)
	}

	return o, nil
}

// ReserveSeat takes one seat on the offering. The increment is conditional on
// free capacity, so concurrent reservations can never overfill it.
func (r *OfferingRepository) ReserveSeat(ctx context.Context, offeringID int64) (*models.Offering, error) {
	query := `
		UPDATE university_programmes
		SET filled_slots = filled_slots + 1
		WHERE id = $1 AND filled_slots < capacity
		RETURNING id, university_id, programme_id, capacity, filled_slots
	`

	var o models.Offering
	err := db.Conn(ctx, r.db).QueryRow(ctx, query, offeringID).Scan(
		&o.ID, &o.UniversityID, &o.ProgrammeID, &o.Capacity, &o.FilledSlots,
	)
	if err == nil {
		return &o, nil
	}

	if !dberrors.IsNoRows(err) {
		if dberrors.IsCheckViolation(err) {
			return nil, apperrors.ErrCapacityExceeded
		}
		return nil, apperrors.NewStorageError("reserve seat", err)
	}

	// No row updated: either the offering is full or it does not exist
	if _, getErr := r.GetOffering(ctx, offeringID); getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.ErrCapacityExceeded
}

// ReleaseSeat gives one seat back, never going below zero
func (r *OfferingRepository) ReleaseSeat(ctx context.Context, offeringID int64) error {
	query := `
		UPDATE university_programmes
		SET filled_slots = GREATEST(filled_slots - 1, 0)
		WHERE id = $1
	`

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, query, offeringID)
	if err != nil {
		return apperrors.NewStorageError("release seat", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("release seat on offering %d: %w", offeringID, apperrors.ErrOfferingNotFound)
	}

	return nil
}
