package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/metrics"
)

// PlacementOptions holds the scheduler policies
type PlacementOptions struct {
	Ranking RankingOrder
	Rescore bool
	// RunTimeout bounds an automatic run once started. Zero means no limit.
	RunTimeout time.Duration
}

// PlacementService runs automatic placement and handles manual overrides
type PlacementService struct {
	tx      Transactor
	stores  Stores
	opts    PlacementOptions
	metrics *metrics.PlacementMetrics
	logger  zerolog.Logger

	runs singleflight.Group
}

// NewPlacementService creates a new placement service
func NewPlacementService(tx Transactor, stores Stores, opts PlacementOptions, m *metrics.PlacementMetrics, logger zerolog.Logger) *PlacementService {
	if opts.Ranking == "" {
		opts.Ranking = RankDescending
	}
	return &PlacementService{
		tx:      tx,
		stores:  stores,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "placement").Logger(),
	}
}

// GetPlacement retrieves a placement by ID
func (s *PlacementService) GetPlacement(ctx context.Context, id int64) (*models.Placement, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("placement ID must be positive")
	}
	return s.stores.Placements.GetByID(ctx, id)
}

// ListPlacements returns a page of placements with the total count
func (s *PlacementService) ListPlacements(ctx context.Context, filter models.PlacementFilter) ([]*models.Placement, int64, error) {
	if filter.Year != nil && *filter.Year <= 0 {
		return nil, 0, apperrors.NewValidationError("year must be a positive integer")
	}
	return s.stores.Placements.List(ctx, filter)
}

// ListStudentPlacements returns every placement of a student
func (s *PlacementService) ListStudentPlacements(ctx context.Context, studentID int64) ([]*models.Placement, error) {
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("student ID must be positive")
	}
	return s.stores.Placements.ListByStudent(ctx, studentID)
}

// ListOfferings returns a programme's offerings with their seat counts
func (s *PlacementService) ListOfferings(ctx context.Context, programmeID int64) ([]*models.Offering, error) {
	if programmeID <= 0 {
		return nil, apperrors.NewValidationError("programme ID must be positive")
	}
	return s.stores.Offerings.ListOfferings(ctx, programmeID)
}

// CreateManualPlacement places a pending application on a chosen offering.
// It takes a seat through the capacity ledger like an automatic run does.
func (s *PlacementService) CreateManualPlacement(ctx context.Context, applicationID, offeringID int64, year int) (*models.Placement, error) {
	if applicationID <= 0 || offeringID <= 0 {
		return nil, apperrors.NewValidationError("application ID and offering ID must be positive")
	}
	if year <= 0 {
		return nil, apperrors.NewValidationError("year must be a positive integer")
	}

	var placement *models.Placement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.lockPending(ctx, applicationID); err != nil {
			return err
		}

		app, err := s.stores.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}

		offering, err := s.stores.Offerings.GetOffering(ctx, offeringID)
		if err != nil {
			return err
		}
		if offering.ProgrammeID != app.ProgrammeID {
			return apperrors.NewValidationError(fmt.Sprintf(
				"offering %d is not for programme %d", offeringID, app.ProgrammeID))
		}

		seat, err := s.stores.Offerings.ReserveSeat(ctx, offeringID)
		if err != nil {
			return err
		}

		placement, err = s.commitPlacement(ctx, app, seat, year)
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Int64("applicationId", applicationID).
			Int64("offeringId", offeringID).
			Msg("Manual placement rejected")
		return nil, err
	}

	s.metrics.SeatReserved()
	s.logger.Info().
		Int64("placementId", placement.ID).
		Int64("applicationId", applicationID).
		Int64("offeringId", offeringID).
		Msg("Manual placement created")
	return placement, nil
}

// DeletePlacement removes a placement, gives its seat back and returns the
// application to pending.
func (s *PlacementService) DeletePlacement(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("placement ID must be positive")
	}

	var deleted *models.Placement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.stores.Placements.Delete(ctx, id)
		if err != nil {
			return err
		}
		deleted = p

		if err := s.stores.Offerings.ReleaseSeat(ctx, p.OfferingID); err != nil {
			return err
		}

		return s.stores.Applications.UpdateStatus(ctx, p.ApplicationID, models.StatusPlaced, models.StatusPending)
	})
	if err != nil {
		return err
	}

	s.metrics.SeatReleased()
	s.logger.Info().
		Int64("placementId", id).
		Int64("applicationId", deleted.ApplicationID).
		Int64("offeringId", deleted.OfferingID).
		Msg("Placement deleted and seat released")
	return nil
}

// lockPending locks the application row and fails unless it is pending
func (s *PlacementService) lockPending(ctx context.Context, applicationID int64) error {
	status, err := s.stores.Applications.LockStatus(ctx, applicationID)
	if err != nil {
		return err
	}

	switch status {
	case models.StatusPending:
		return nil
	case models.StatusPlaced, models.StatusNotPlaced, models.StatusWithdrawn, models.StatusRejected:
		return fmt.Errorf("application %d is %s: %w", applicationID, status, apperrors.ErrConcurrentModification)
	default:
		return fmt.Errorf("application %d has unknown status %q: %w", applicationID, status, apperrors.ErrConcurrentModification)
	}
}

// commitPlacement records the placement for an already reserved seat and marks the application placed.
func (s *PlacementService) commitPlacement(ctx context.Context, app *models.Application, seat *models.Offering, year int) (*models.Placement, error) {
	placement := &models.Placement{
		StudentID:     app.StudentID,
		ProgrammeID:   seat.ProgrammeID,
		UniversityID:  seat.UniversityID,
		OfferingID:    seat.ID,
		ApplicationID: app.ID,
		Year:          year,
	}
	if err := s.stores.Placements.Create(ctx, placement); err != nil {
		return nil, err
	}

	if err := s.stores.Applications.UpdateStatus(ctx, app.ID, models.StatusPending, models.StatusPlaced); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("You have been placed in programme %d at university %d for the %d intake.",
		seat.ProgrammeID, seat.UniversityID, year)
	if err := s.stores.Notifications.Notify(ctx, app.StudentID, msg); err != nil {
		return nil, err
	}

	return placement, nil
}
