package books

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

const bookColumns = `id, author_id, title, description, year, status, created_at, modified_at`

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.Status == "" {
		book.Status = models.BookStatusDraft
	}
	query := `
		INSERT INTO books (author_id, title, description, year, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, modified_at
	`
	err := r.db.QueryRowContext(ctx, query, book.AuthorID, book.Title, book.Description, nullYear(book.Year), string(book.Status)).
		Scan(&book.ID, &book.CreatedAt, &book.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 AND NOT is_deleted`

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE author_id = $1 AND NOT is_deleted ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, book *models.Book) error {
	query := `
		UPDATE books
		SET title = $2, description = $3, year = $4, status = $5, modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, book.ID, book.Title, book.Description, nullYear(book.Year), string(book.Status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET is_deleted = TRUE, deleted_at = now(), modified_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*models.Book, error) {
	var (
		b      models.Book
		year   sql.NullInt64
		status string
	)
	if err := s.Scan(&b.ID, &b.AuthorID, &b.Title, &b.Description, &year, &status, &b.CreatedAt, &b.ModifiedAt); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	b.Status = models.BookStatus(status)
	return &b, nil
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
