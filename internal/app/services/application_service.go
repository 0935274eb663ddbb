package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/unicluster/internal/app/eligibility"
	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
)

// SubmitApplication carries what a student supplies when applying
type SubmitApplication struct {
	StudentID   int64
	ProgrammeID int64
	ChoiceOrder int
}

// ClusterEvaluation is a student's standing against one cluster
type ClusterEvaluation struct {
	ClusterID int64
	Code      string
	Name      string
	Result    eligibility.Result
}

// ApplicationService handles application intake and administrative status changes
type ApplicationService struct {
	tx     Transactor
	stores Stores
	logger zerolog.Logger
	now    func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(tx Transactor, stores Stores, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		tx:     tx,
		stores: stores,
		logger: logger.With().Str("component", "applications").Logger(),
		now:    time.Now,
	}
}

func (s *ApplicationService) validateSubmission(req SubmitApplication) error {
	if req.StudentID <= 0 {
		return apperrors.NewValidationError("student ID must be positive")
	}
	if req.ProgrammeID <= 0 {
		return apperrors.NewValidationError("programme ID must be positive")
	}
	if req.ChoiceOrder < 1 {
		return apperrors.NewValidationError("choice order must be at least 1")
	}
	return nil
}

// Submit evaluates the student against every cluster mapped to the programme
// and stores a pending application scored by the best eligible cluster.
func (s *ApplicationService) Submit(ctx context.Context, req SubmitApplication) (*models.Application, error) {
	if err := s.validateSubmission(req); err != nil {
		return nil, err
	}

	exists, err := s.stores.Results.StudentExists(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrStudentNotFound
	}

	clusterIDs, err := s.stores.Clusters.GetClusterIDsForProgramme(ctx, req.ProgrammeID)
	if err != nil {
		return nil, err
	}
	if len(clusterIDs) == 0 {
		return nil, fmt.Errorf("programme %d: %w", req.ProgrammeID, apperrors.ErrMissingClusterMapping)
	}

	results, err := s.stores.Results.GetSubjectResults(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	candidates := make([]eligibility.Candidate, 0, len(clusterIDs))
	for _, clusterID := range clusterIDs {
		reqs, err := s.stores.Clusters.GetRequirements(ctx, clusterID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, eligibility.Candidate{
			ClusterID: clusterID,
			Result:    eligibility.Evaluate(reqs, results),
		})
	}

	best, ok := eligibility.Best(candidates)
	if !ok {
		s.logger.Info().
			Int64("studentId", req.StudentID).
			Int64("programmeId", req.ProgrammeID).
			Msg("Application refused, student not eligible for any mapped cluster")
		return nil, fmt.Errorf("programme %d: %w", req.ProgrammeID, apperrors.ErrNotEligible)
	}

	clusterID := best.ClusterID
	app := &models.Application{
		StudentID:       req.StudentID,
		ProgrammeID:     req.ProgrammeID,
		ClusterID:       &clusterID,
		ChoiceOrder:     req.ChoiceOrder,
		ApplicationDate: s.now().UTC(),
		Status:          models.StatusPending,
		ClusterScore:    best.Result.Score,
	}
	if err := s.stores.Applications.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationId", app.ID).
		Int64("studentId", app.StudentID).
		Int64("clusterId", clusterID).
		Float64("clusterScore", app.ClusterScore).
		Msg("Application submitted")
	return app, nil
}

// UpdateStatus withdraws or rejects a pending application
func (s *ApplicationService) UpdateStatus(ctx context.Context, id int64, to models.ApplicationStatus) (*models.Application, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("application ID must be positive")
	}
	if !to.IsAdministrative() {
		return nil, fmt.Errorf("cannot set status %q: %w", to, apperrors.ErrInvalidStatusTransition)
	}

	var updated *models.Application
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		status, err := s.stores.Applications.LockStatus(ctx, id)
		if err != nil {
			return err
		}
		if status != models.StatusPending {
			return fmt.Errorf("application %d is %s: %w", id, status, apperrors.ErrInvalidStatusTransition)
		}

		if err := s.stores.Applications.UpdateStatus(ctx, id, models.StatusPending, to); err != nil {
			return err
		}

		updated, err = s.stores.Applications.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("applicationId", id).Str("status", string(to)).Msg("Application status changed")
	return updated, nil
}

// GetApplication retrieves an application by ID
func (s *ApplicationService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("application ID must be positive")
	}
	return s.stores.Applications.GetByID(ctx, id)
}

// ListApplications returns a page of applications with the total count
func (s *ApplicationService) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error) {
	return s.stores.Applications.List(ctx, filter)
}

// ListStudentApplications returns a student's applications
func (s *ApplicationService) ListStudentApplications(ctx context.Context, studentID int64) ([]*models.Application, error) {
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("student ID must be positive")
	}
	return s.stores.Applications.ListByStudent(ctx, studentID)
}

// EvaluateStudent previews a student's eligibility and score for a cluster without storing anything
func (s *ApplicationService) EvaluateStudent(ctx context.Context, studentID, clusterID int64) (*ClusterEvaluation, error) {
	if studentID <= 0 || clusterID <= 0 {
		return nil, apperrors.NewValidationError("student ID and cluster ID must be positive")
	}

	exists, err := s.stores.Results.StudentExists(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrStudentNotFound
	}

	cluster, err := s.stores.Clusters.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.stores.Clusters.GetRequirements(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	results, err := s.stores.Results.GetSubjectResults(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &ClusterEvaluation{
		ClusterID: cluster.ID,
		Code:      cluster.Code,
		Name:      cluster.Name,
		Result:    eligibility.Evaluate(reqs, results),
	}, nil
}
