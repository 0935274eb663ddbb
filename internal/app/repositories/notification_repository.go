package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/unicluster/internal/db"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
)

// NotificationRepository writes in-app notifications. Delivery happens elsewhere.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Notify stores a message for a student
func (r *NotificationRepository) Notify(ctx context.Context, studentID int64, message string) error {
	_, err := db.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO notifications (student_id, message)
		VALUES ($1, $2)
	`, studentID, message)
	if err != nil {
		return apperrors.NewStorageError("create notification", err)
	}
	return nil
}
