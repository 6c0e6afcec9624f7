package pageshares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/google/uuid"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, share *models.PageShare) (*models.ShareInfo, error) {
	query := `
		INSERT INTO page_shares (page_id, book_id, shared_by, share_token, is_active, content_snapshot)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (page_id, shared_by) DO UPDATE
		SET content_snapshot = EXCLUDED.content_snapshot,
		    is_active = TRUE,
		    is_deleted = FALSE,
		    deleted_at = NULL,
		    modified_at = now()
		RETURNING id, share_token, is_active, created_at
	`
	info := &models.ShareInfo{}
	err := r.db.QueryRowContext(ctx, query, share.PageID, share.BookID, share.SharedBy, share.Token, share.ContentSnapshot).
		Scan(&info.ID, &info.ShareToken, &info.IsActive, &info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return info, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, pageID, userID int64) error {
	query := `
		UPDATE page_shares
		SET is_active = FALSE, modified_at = now()
		WHERE page_id = $1 AND shared_by = $2 AND is_active AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, pageID, userID)
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

func (r *PostgresRepository) FindPublic(ctx context.Context, token uuid.UUID) (*models.PublicPage, error) {
	query := `
		SELECT s.id, s.content_snapshot, p.page_number, b.title, b.status, s.created_at, s.modified_at
		FROM page_shares s
		JOIN pages p ON p.id = s.page_id
		JOIN books b ON b.id = p.book_id
		WHERE s.share_token = $1
		  AND s.is_active
		  AND NOT s.is_deleted
		  AND NOT p.is_deleted
	`
	var (
		pp     models.PublicPage
		status string
	)
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&pp.ID, &pp.Content, &pp.PageNumber, &pp.BookTitle, &status, &pp.CreatedAt, &pp.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	pp.BookIsPublic = models.BookStatus(status) == models.BookStatusPublished
	return &pp, nil
}
