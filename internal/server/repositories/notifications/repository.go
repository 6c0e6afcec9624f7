package notifications

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// ListByUser returns the user's non-deleted notifications, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	// MarkAllRead marks every unread notification of the user as read and
	// returns how many changed.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	SoftDelete(ctx context.Context, id, userID int64) error
}
