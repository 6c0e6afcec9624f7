package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
)

const maxTitleLength = 255

// BookInput carries the editable fields of a book.
type BookInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        *int   `json:"year"`
}

func (in *BookInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", common.ErrorValidation, maxTitleLength)
	}
	if in.Year != nil && (*in.Year < 0 || *in.Year > 9999) {
		return fmt.Errorf("%w: invalid year", common.ErrorValidation)
	}
	return nil
}

// BookService manages a user's books and their pages. Every call checks that
// the caller is the author; foreign and deleted ids look the same
// (common.ErrBookNotFound).
type BookService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifications *NotificationService
	log           logging.Logger
}

func NewBookService(db *sql.DB, m repomanager.RepositoryManager, n *NotificationService, log logging.Logger) *BookService {
	return &BookService{db: db, repomanager: m, notifications: n, log: log.With("module", "books")}
}

func (s *BookService) CreateBook(ctx context.Context, userID int64, in BookInput) (*models.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	book := &models.Book{
		AuthorID:    userID,
		Title:       in.Title,
		Description: in.Description,
		Year:        in.Year,
		Status:      models.BookStatusDraft,
	}
	return s.repomanager.Books(s.db).Create(ctx, book)
}

// GetBook returns the book with its non-deleted pages in page order.
func (s *BookService) GetBook(ctx context.Context, userID, bookID int64) (*models.Book, error) {
	book, err := s.ownBook(ctx, s.db, userID, bookID)
	if err != nil {
		return nil, err
	}
	pages, err := s.repomanager.Pages(s.db).ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book.Pages = pages
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, userID int64) ([]*models.Book, error) {
	return s.repomanager.Books(s.db).ListByAuthor(ctx, userID)
}

func (s *BookService) UpdateBook(ctx context.Context, userID, bookID int64, in BookInput) (*models.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var book *models.Book
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		book, err = s.ownBook(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		book.Title = in.Title
		book.Description = in.Description
		book.Year = in.Year
		return s.repomanager.Books(tx).Update(ctx, book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook soft-deletes the book. Its shares are left as they are; public
// resolution stops finding them because the book is gone.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownBook(ctx, tx, userID, bookID); err != nil {
			return err
		}
		return s.repomanager.Books(tx).SoftDelete(ctx, bookID)
	})
}

// TogglePublish flips the book between Draft and Published.
func (s *BookService) TogglePublish(ctx context.Context, userID, bookID int64) (*models.Book, error) {
	var book *models.Book
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		book, err = s.ownBook(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if book.IsPublished() {
			book.Status = models.BookStatusDraft
		} else {
			book.Status = models.BookStatusPublished
		}
		return s.repomanager.Books(tx).Update(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	if book.IsPublished() {
		s.notifications.Notify(ctx, &models.Notification{
			UserID:        userID,
			Type:          models.NotificationBookPublished,
			Title:         "Book published",
			Message:       fmt.Sprintf("Your book %q has been published.", book.Title),
			RelatedBookID: &book.ID,
		})
	}
	s.log.Info(ctx, "book status changed", "book_id", book.ID, "status", book.Status)
	return book, nil
}

// ListPages returns the book's non-deleted pages in page order.
func (s *BookService) ListPages(ctx context.Context, userID, bookID int64) ([]*models.Page, error) {
	if _, err := s.ownBook(ctx, s.db, userID, bookID); err != nil {
		return nil, err
	}
	return s.repomanager.Pages(s.db).ListByBook(ctx, bookID)
}

func (s *BookService) GetPage(ctx context.Context, userID, bookID, pageID int64) (*models.Page, error) {
	return s.ownPage(ctx, s.db, userID, bookID, pageID)
}

func (s *BookService) CreatePage(ctx context.Context, userID, bookID int64, content string) (*models.Page, error) {
	var page *models.Page
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownBook(ctx, tx, userID, bookID); err != nil {
			return err
		}
		var err error
		page, err = s.repomanager.Pages(tx).Create(ctx, &models.Page{BookID: bookID, Content: content})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BookService) UpdatePage(ctx context.Context, userID, bookID, pageID int64, content string) (*models.Page, error) {
	var page *models.Page
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		page, err = s.ownPage(ctx, tx, userID, bookID, pageID)
		if err != nil {
			return err
		}
		if err := s.repomanager.Pages(tx).UpdateContent(ctx, pageID, content); err != nil {
			return err
		}
		page.Content = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BookService) DeletePage(ctx context.Context, userID, bookID, pageID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownPage(ctx, tx, userID, bookID, pageID); err != nil {
			return err
		}
		return s.repomanager.Pages(tx).SoftDelete(ctx, pageID)
	})
}

func (s *BookService) ownBook(ctx context.Context, db dbx.DBTX, userID, bookID int64) (*models.Book, error) {
	book, err := s.repomanager.Books(db).GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBookNotFound
		}
		return nil, err
	}
	if book.AuthorID != userID {
		return nil, common.ErrBookNotFound
	}
	return book, nil
}

func (s *BookService) ownPage(ctx context.Context, db dbx.DBTX, userID, bookID, pageID int64) (*models.Page, error) {
	if _, err := s.ownBook(ctx, db, userID, bookID); err != nil {
		return nil, err
	}
	return pageOfBook(ctx, s.repomanager, db, bookID, pageID)
}

// pageOfBook loads a non-deleted page and checks that it belongs to bookID.
func pageOfBook(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, bookID, pageID int64) (*models.Page, error) {
	page, err := m.Pages(db).GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPageNotFound
		}
		return nil, err
	}
	if page.BookID != bookID {
		return nil, common.ErrPageNotFound
	}
	return page, nil
}
