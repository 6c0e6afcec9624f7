package bookshares

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) Upsert(ctx context.Context, share *models.BookShare) (*models.ShareInfo, error) {
	snapshot := share.PagesSnapshot
	if snapshot == nil {
		snapshot = []models.PageSnapshot{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}

	query := `
		INSERT INTO book_shares (book_id, shared_by, share_token, is_active, pages_snapshot)
		VALUES ($1, $2, $3, TRUE, $4::jsonb)
		ON CONFLICT (book_id, shared_by) DO UPDATE
		SET pages_snapshot = EXCLUDED.pages_snapshot,
		    is_active = TRUE,
		    is_deleted = FALSE,
		    deleted_at = NULL,
		    modified_at = now()
		RETURNING id, share_token, is_active, created_at
	`
	info := &models.ShareInfo{}
	err = r.db.QueryRowContext(ctx, query, share.BookID, share.SharedBy, share.Token, string(data)).
		Scan(&info.ID, &info.ShareToken, &info.IsActive, &info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return info, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, bookID, userID int64) error {
	query := `
		UPDATE book_shares
		SET is_active = FALSE, modified_at = now()
		WHERE book_id = $1 AND shared_by = $2 AND is_active AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, bookID, userID)
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

func (r *PostgresRepository) FindPublic(ctx context.Context, token uuid.UUID) (*models.PublicBook, error) {
	query := `
		SELECT s.id, b.title, b.description, b.year, b.status, s.pages_snapshot
		FROM book_shares s
		JOIN books b ON b.id = s.book_id
		WHERE s.share_token = $1
		  AND s.is_active
		  AND NOT s.is_deleted
		  AND NOT b.is_deleted
	`
	var (
		pb     models.PublicBook
		year   sql.NullInt64
		status string
		raw    []byte
	)
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&pb.ID, &pb.Title, &pb.Description, &year, &status, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if year.Valid {
		y := int(year.Int64)
		pb.Year = &y
	}
	pb.Status = models.BookStatus(status)
	pb.Pages = []models.PageSnapshot{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &pb.Pages); err != nil {
			return nil, fmt.Errorf("snapshot decode: %w", err)
		}
	}
	return &pb, nil
}
