// Package pages stores the ordered pages of a book.
package pages

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	// Create appends page after the last non-deleted page of its book and
	// fills ID, PageNumber and timestamps.
	Create(ctx context.Context, page *models.Page) (*models.Page, error)
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	// ListByBook returns non-deleted pages ordered by page number.
	ListByBook(ctx context.Context, bookID int64) ([]*models.Page, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
}
