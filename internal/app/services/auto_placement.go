package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/unicluster/internal/app/eligibility"
	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/dberrors"
	"github.com/yigit/unicluster/internal/pkg/metrics"
)

// RunSummary counts what happened to each application during one run
type RunSummary struct {
	RunID     string
	Year      int
	Pending   int
	Placed    int
	NotPlaced int
	Skipped   int
	Conflicts int
	Failed    int
}

func (r *RunSummary) record(outcome string) {
	switch outcome {
	case metrics.OutcomePlaced:
		r.Placed++
	case metrics.OutcomeNotPlaced:
		r.NotPlaced++
	case metrics.OutcomeSkipped:
		r.Skipped++
	case metrics.OutcomeConflict:
		r.Conflicts++
	case metrics.OutcomeFailed:
		r.Failed++
	}
}

// RunAutoPlacement assigns seats to every pending application for the given
// intake year and returns the placements created. Concurrent calls for the
// same year inside this process share one run. The run is detached from the
// caller that started it: a caller that goes away stops waiting but the run
// continues for the others, bounded by PlacementOptions.RunTimeout.
func (s *PlacementService) RunAutoPlacement(ctx context.Context, year int) ([]*models.Placement, error) {
	if year <= 0 {
		return nil, apperrors.NewValidationError("year must be a positive integer")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := s.runs.DoChan(strconv.Itoa(year), func() (interface{}, error) {
		runCtx := context.WithoutCancel(ctx)
		if s.opts.RunTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.opts.RunTimeout)
			defer cancel()
		}
		return s.runAutoPlacement(runCtx, year)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug().Int("year", year).Msg("Joined an automatic placement run already in progress")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*models.Placement), nil
	case <-ctx.Done():
		s.logger.Warn().Int("year", year).Err(ctx.Err()).Msg("Stopped waiting for automatic placement run, run continues")
		return nil, ctx.Err()
	}
}

func (s *PlacementService) runAutoPlacement(ctx context.Context, year int) ([]*models.Placement, error) {
	start := time.Now()
	summary := &RunSummary{RunID: uuid.NewString(), Year: year}
	log := s.logger.With().Str("runId", summary.RunID).Int("year", year).Logger()

	log.Info().Str("ranking", string(s.opts.Ranking)).Bool("rescore", s.opts.Rescore).Msg("Automatic placement run started")

	placements, err := s.placePending(ctx, log, year, summary)
	if err != nil {
		s.metrics.ObserveRun(metrics.RunFailed, summary.Placed, time.Since(start))
		log.Error().Err(err).
			Int("placed", summary.Placed).
			Int("notPlaced", summary.NotPlaced).
			Msg("Automatic placement run aborted")
		return nil, err
	}

	s.metrics.ObserveRun(metrics.RunSucceeded, summary.Placed, time.Since(start))
	log.Info().
		Int("pending", summary.Pending).
		Int("placed", summary.Placed).
		Int("notPlaced", summary.NotPlaced).
		Int("skipped", summary.Skipped).
		Int("conflicts", summary.Conflicts).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Automatic placement run finished")

	if placements == nil {
		placements = []*models.Placement{}
	}
	return placements, nil
}

func (s *PlacementService) placePending(ctx context.Context, log zerolog.Logger, year int, summary *RunSummary) ([]*models.Placement, error) {
	pending, err := s.stores.Applications.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending applications: %w", err)
	}
	summary.Pending = len(pending)

	if s.opts.Rescore {
		pending, err = s.rescore(ctx, log, pending, summary)
		if err != nil {
			return nil, err
		}
	}

	s.opts.Ranking.Sort(pending)

	var placements []*models.Placement
	for _, app := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		appLog := log.With().Int64("applicationId", app.ID).Int64("studentId", app.StudentID).Logger()

		if app.ClusterID == nil {
			appLog.Warn().
				Int64("programmeId", app.ProgrammeID).
				Err(apperrors.ErrMissingClusterMapping).
				Msg("Application skipped, left pending")
			s.observe(summary, metrics.OutcomeSkipped)
			continue
		}

		placement, outcome, err := s.placeApplication(ctx, app, year)
		if err != nil {
			if dberrors.IsConnectionError(err) {
				return nil, apperrors.NewStorageError("automatic placement", err)
			}
			if errors.Is(err, apperrors.ErrConcurrentModification) {
				appLog.Info().Err(err).Msg("Application changed by another run, skipped")
				s.observe(summary, metrics.OutcomeConflict)
				continue
			}
			appLog.Error().Err(err).Msg("Application placement failed, left pending")
			s.observe(summary, metrics.OutcomeFailed)
			continue
		}

		s.observe(summary, outcome)
		if placement != nil {
			s.metrics.SeatReserved()
			appLog.Debug().
				Int64("placementId", placement.ID).
				Int64("offeringId", placement.OfferingID).
				Float64("clusterScore", app.ClusterScore).
				Msg("Application placed")
			placements = append(placements, placement)
		}
	}

	return placements, nil
}

// maxPlacementAttempts bounds how often one application is tried when the
// database aborts its transaction with a serialization failure or deadlock.
const maxPlacementAttempts = 2

// placeApplication resolves one application in its own transaction. A nil
// placement with a nil error means the application was marked not placed.
func (s *PlacementService) placeApplication(ctx context.Context, app *models.Application, year int) (*models.Placement, string, error) {
	for attempt := 1; ; attempt++ {
		placement, outcome, err := s.placeOnce(ctx, app, year)
		if err == nil || !dberrors.IsRetryable(err) || attempt >= maxPlacementAttempts {
			return placement, outcome, err
		}
		s.logger.Warn().Err(err).
			Int64("applicationId", app.ID).
			Int("attempt", attempt).
			Msg("Placement transaction aborted by the database, retrying")
	}
}

func (s *PlacementService) placeOnce(ctx context.Context, app *models.Application, year int) (*models.Placement, string, error) {
	var (
		placement *models.Placement
		outcome   string
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		placement, outcome = nil, ""

		if err := s.lockPending(ctx, app.ID); err != nil {
			return err
		}

		offerings, err := s.stores.Offerings.ListOfferings(ctx, app.ProgrammeID)
		if err != nil {
			return err
		}

		for _, o := range LowestIDWithCapacity(offerings) {
			seat, err := s.stores.Offerings.ReserveSeat(ctx, o.ID)
			if errors.Is(err, apperrors.ErrCapacityExceeded) {
				continue
			}
			if err != nil {
				return err
			}

			placement, err = s.commitPlacement(ctx, app, seat, year)
			if err != nil {
				return err
			}
			outcome = metrics.OutcomePlaced
			return nil
		}

		outcome = metrics.OutcomeNotPlaced
		return s.markNotPlaced(ctx, app, "No seats were available in your chosen programme.")
	})
	if err != nil {
		return nil, "", err
	}

	return placement, outcome, nil
}

func (s *PlacementService) markNotPlaced(ctx context.Context, app *models.Application, reason string) error {
	if err := s.stores.Applications.UpdateStatus(ctx, app.ID, models.StatusPending, models.StatusNotPlaced); err != nil {
		return err
	}
	return s.stores.Notifications.Notify(ctx, app.StudentID,
		fmt.Sprintf("Your application %d was not placed. %s", app.ID, reason))
}

// rescore re-evaluates pending applications against current results and
// requirements. Applications that are no longer eligible are marked not placed
// and dropped from the returned list.
func (s *PlacementService) rescore(ctx context.Context, log zerolog.Logger, pending []*models.Application, summary *RunSummary) ([]*models.Application, error) {
	requirements := make(map[int64][]models.ClusterSubjectRequirement)
	kept := pending[:0]

	for _, app := range pending {
		if app.ClusterID == nil {
			kept = append(kept, app)
			continue
		}

		res, err := s.evaluateApplication(ctx, app, requirements)
		if err == nil {
			err = s.applyScore(ctx, app, res)
		}

		switch {
		case err == nil && res.Eligible:
			kept = append(kept, app)
		case err == nil:
			log.Info().Int64("applicationId", app.ID).Float64("score", res.Score).Msg("Application no longer eligible")
			s.observe(summary, metrics.OutcomeNotPlaced)
		case dberrors.IsConnectionError(err):
			return nil, apperrors.NewStorageError("rescore applications", err)
		case errors.Is(err, apperrors.ErrConcurrentModification):
			s.observe(summary, metrics.OutcomeConflict)
		default:
			log.Error().Err(err).Int64("applicationId", app.ID).Msg("Rescore failed, left pending")
			s.observe(summary, metrics.OutcomeFailed)
		}
	}

	return kept, nil
}

func (s *PlacementService) evaluateApplication(ctx context.Context, app *models.Application, cache map[int64][]models.ClusterSubjectRequirement) (eligibility.Result, error) {
	clusterID := *app.ClusterID
	reqs, ok := cache[clusterID]
	if !ok {
		var err error
		reqs, err = s.stores.Clusters.GetRequirements(ctx, clusterID)
		if err != nil {
			return eligibility.Result{}, err
		}
		cache[clusterID] = reqs
	}

	results, err := s.stores.Results.GetSubjectResults(ctx, app.StudentID)
	if err != nil {
		return eligibility.Result{}, err
	}

	return eligibility.Evaluate(reqs, results), nil
}

// applyScore persists a refreshed evaluation: the new score when eligible,
// otherwise the not placed status.
func (s *PlacementService) applyScore(ctx context.Context, app *models.Application, res eligibility.Result) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.lockPending(ctx, app.ID); err != nil {
			return err
		}
		if !res.Eligible {
			return s.markNotPlaced(ctx, app, "Your results no longer meet the cluster requirements.")
		}
		if res.Score == app.ClusterScore {
			return nil
		}
		if err := s.stores.Applications.UpdateScore(ctx, app.ID, res.Score); err != nil {
			return err
		}
		app.ClusterScore = res.Score
		return nil
	})
}

func (s *PlacementService) observe(summary *RunSummary, outcome string) {
	summary.record(outcome)
	s.metrics.ObserveOutcome(outcome)
}
