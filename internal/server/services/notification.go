package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
)

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *NotificationService {
	return &NotificationService{db: db, repomanager: m, log: log.With("module", "notifications")}
}

func (s *NotificationService) List(ctx context.Context, userID int64) ([]*models.Notification, error) {
	return s.repomanager.Notifications(s.db).ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repomanager.Notifications(s.db).MarkRead(ctx, id, userID)
}

// MarkAllRead returns how many notifications were unread.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repomanager.Notifications(s.db).MarkAllRead(ctx, userID)
}

// Delete hides the notification from the user's list.
func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Notifications(s.db).SoftDelete(ctx, id, userID)
}

// Notify stores n. Failures are logged and swallowed: a notification is
// never a reason to fail the operation that produced it.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if _, err := s.repomanager.Notifications(s.db).Create(ctx, n); err != nil {
		s.log.Warn(ctx, "notification not stored", "user_id", n.UserID, "type", n.Type, "error", err)
	}
}
