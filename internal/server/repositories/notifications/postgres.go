package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.Type == "" {
		n.Type = models.NotificationGeneral
	}
	query := `
		INSERT INTO notifications (user_id, notification_type, title, message, related_book_id, related_page_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.UserID, string(n.Type), n.Title, n.Message, nullID(n.RelatedBookID), nullID(n.RelatedPageID),
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, notification_type, title, message, is_read, related_book_id, related_page_id, created_at
		FROM notifications
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Notification, 0)
	for rows.Next() {
		var (
			n            models.Notification
			kind         string
			bookID, page sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &n.IsRead, &bookID, &page, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		n.Type = models.NotificationType(kind)
		if bookID.Valid {
			n.RelatedBookID = &bookID.Int64
		}
		if page.Valid {
			n.RelatedPageID = &page.Int64
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, modified_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	`
	return r.updateOne(ctx, query, id, userID)
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, modified_at = now()
		WHERE user_id = $1 AND NOT is_read AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE notifications
		SET is_deleted = TRUE, deleted_at = now(), modified_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	`
	return r.updateOne(ctx, query, id, userID)
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
