package services

import (
	"context"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/app/repositories"
)

// Transactor runs fn inside one database transaction carried by the context.
// Nested calls join the outer transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ApplicationStore persists applications and their status transitions
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	ListPending(ctx context.Context) ([]*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error)
	LockStatus(ctx context.Context, id int64) (models.ApplicationStatus, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) error
	UpdateScore(ctx context.Context, id int64, score float64) error
}

// CapacityLedger is the only writer of offering seat counts
type CapacityLedger interface {
	ListOfferings(ctx context.Context, programmeID int64) ([]*models.Offering, error)
	GetOffering(ctx context.Context, id int64) (*models.Offering, error)
	ReserveSeat(ctx context.Context, offeringID int64) (*models.Offering, error)
	ReleaseSeat(ctx context.Context, offeringID int64) error
}

// PlacementStore persists placements
type PlacementStore interface {
	Create(ctx context.Context, p *models.Placement) error
	GetByID(ctx context.Context, id int64) (*models.Placement, error)
	Delete(ctx context.Context, id int64) (*models.Placement, error)
	List(ctx context.Context, filter models.PlacementFilter) ([]*models.Placement, int64, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Placement, error)
}

// ClusterReader reads cluster reference data
type ClusterReader interface {
	GetCluster(ctx context.Context, id int64) (*models.Cluster, error)
	GetClusterIDsForProgramme(ctx context.Context, programmeID int64) ([]int64, error)
	GetRequirements(ctx context.Context, clusterID int64) ([]models.ClusterSubjectRequirement, error)
}

// ResultReader reads student examination results
type ResultReader interface {
	GetSubjectResults(ctx context.Context, studentID int64) ([]models.SubjectResult, error)
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

// Notifier records a message for a student
type Notifier interface {
	Notify(ctx context.Context, studentID int64, message string) error
}

// Stores groups the storage dependencies shared by the services
type Stores struct {
	Applications  ApplicationStore
	Placements    PlacementStore
	Offerings     CapacityLedger
	Clusters      ClusterReader
	Results       ResultReader
	Notifications Notifier
}

// NewStores wires the Postgres repositories into Stores
func NewStores(repos *repositories.Repositories) Stores {
	return Stores{
		Applications:  repos.ApplicationRepository,
		Placements:    repos.PlacementRepository,
		Offerings:     repos.OfferingRepository,
		Clusters:      repos.ClusterRepository,
		Results:       repos.ResultRepository,
		Notifications: repos.NotificationRepository,
	}
}
