// Package books stores books. Soft-deleted books are invisible to every
// read in this package.
package books

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*models.Book, error)
	// Update writes title, description, year and status.
	Update(ctx context.Context, book *models.Book) error
	SoftDelete(ctx context.Context, id int64) error
}
