package pages

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, page *models.Page) (*models.Page, error) {
	query := `
		INSERT INTO pages (book_id, page_number, content)
		SELECT $1::bigint, COALESCE(MAX(page_number), 0) + 1, $2::text
		FROM pages
		WHERE book_id = $1 AND NOT is_deleted
		RETURNING id, page_number, created_at, modified_at
	`
	err := r.db.QueryRowContext(ctx, query, page.BookID, page.Content).
		Scan(&page.ID, &page.PageNumber, &page.CreatedAt, &page.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return page, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	query := `
		SELECT id, book_id, page_number, content, created_at, modified_at
		FROM pages
		WHERE id = $1 AND NOT is_deleted
	`
	p := &models.Page{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.BookID, &p.PageNumber, &p.Content, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByBook(ctx context.Context, bookID int64) ([]*models.Page, error) {
	query := `
		SELECT id, book_id, page_number, content, created_at, modified_at
		FROM pages
		WHERE book_id = $1 AND NOT is_deleted
		ORDER BY page_number ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Page, 0)
	for rows.Next() {
		p := &models.Page{}
		if err := rows.Scan(&p.ID, &p.BookID, &p.PageNumber, &p.Content, &p.CreatedAt, &p.ModifiedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query := `
		UPDATE pages
		SET content = $2, modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return r.execOne(ctx, query, id, content)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE pages
		SET is_deleted = TRUE, deleted_at = now(), modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
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
