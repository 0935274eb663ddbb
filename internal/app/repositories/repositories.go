package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ApplicationRepository  *ApplicationRepository
	PlacementRepository    *PlacementRepository
	OfferingRepository     *OfferingRepository
	ClusterRepository      *ClusterRepository
	ResultRepository       *ResultRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ApplicationRepository:  NewApplicationRepository(db),
		PlacementRepository:    NewPlacementRepository(db),
		OfferingRepository:     NewOfferingRepository(db),
		ClusterRepository:      NewClusterRepository(db),
		ResultRepository:       NewResultRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
