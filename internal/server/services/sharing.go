package services

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// shareTxAttempts bounds how often a share transaction is rerun after
// losing a serialization race to a concurrent share of the same resource.
const shareTxAttempts = 5

// SnapshotArchive keeps an out-of-database copy of shared book snapshots.
type SnapshotArchive interface {
	PutBookSnapshot(ctx context.Context, token uuid.UUID, book *models.PublicBook) error
	PresignedSnapshotURL(ctx context.Context, token uuid.UUID) (string, error)
}

// SharingService publishes frozen copies of books and pages behind public
// tokens. A user has at most one share per book and per page; sharing again
// refreshes the snapshot and reactivates the share under the same token.
type SharingService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifications *NotificationService
	archive       SnapshotArchive
	log           logging.Logger
	newToken      func() uuid.UUID
}

// NewSharingService builds the service. archive may be nil, which disables
// snapshot export.
func NewSharingService(db *sql.DB, m repomanager.RepositoryManager, n *NotificationService, archive SnapshotArchive, log logging.Logger) *SharingService {
	return &SharingService{
		db:            db,
		repomanager:   m,
		notifications: n,
		archive:       archive,
		log:           log.With("module", "sharing"),
		newToken:      uuid.New,
	}
}

// CreateOrRefreshBookShare snapshots the book's non-deleted pages in page
// order and stores them on the caller's share of the book. Only published
// books can be shared.
func (s *SharingService) CreateOrRefreshBookShare(ctx context.Context, bookID, userID int64) (*models.ShareInfo, error) {
	var (
		info   *models.ShareInfo
		public *models.PublicBook
	)
	err := dbx.WithTxRetry(ctx, s.db, dbx.RepeatableRead, shareTxAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		book, err := s.sharedBook(ctx, tx, bookID, userID)
		if err != nil {
			return err
		}
		if !book.IsPublished() {
			return common.ErrBookNotPublished
		}

		pages, err := s.repomanager.Pages(tx).ListByBook(ctx, bookID)
		if err != nil {
			return err
		}
		snapshot := snapshotOf(pages)

		info, err = s.repomanager.BookShares(tx).Upsert(ctx, &models.BookShare{
			BookID:        bookID,
			SharedBy:      userID,
			Token:         s.newToken(),
			PagesSnapshot: snapshot,
		})
		if err != nil {
			return err
		}

		public = &models.PublicBook{
			ID:          info.ID,
			Title:       book.Title,
			Description: book.Description,
			Year:        book.Year,
			Status:      book.Status,
			Pages:       snapshot,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "book shared", "book_id", bookID, "user_id", userID, "share_id", info.ID, "pages", len(public.Pages))
	s.notifications.Notify(ctx, &models.Notification{
		UserID:        userID,
		Type:          models.NotificationBookShared,
		Title:         "Book shared",
		Message:       fmt.Sprintf("Your book %q has been shared successfully.", public.Title),
		RelatedBookID: &bookID,
	})
	if s.archive != nil {
		if err := s.archive.PutBookSnapshot(ctx, info.ShareToken, public); err != nil {
			s.log.Warn(ctx, "snapshot not archived", "share_id", info.ID, "error", err)
		}
	}
	return info, nil
}

// CreateOrRefreshPageShare freezes the page's current content on the
// caller's share of the page.
func (s *SharingService) CreateOrRefreshPageShare(ctx context.Context, bookID, pageID, userID int64) (*models.ShareInfo, error) {
	var (
		info *models.ShareInfo
		book *models.Book
		page *models.Page
	)
	err := dbx.WithTxRetry(ctx, s.db, dbx.RepeatableRead, shareTxAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		book, err = s.sharedBook(ctx, tx, bookID, userID)
		if err != nil {
			return err
		}
		page, err = pageOfBook(ctx, s.repomanager, tx, bookID, pageID)
		if err != nil {
			return err
		}

		info, err = s.repomanager.PageShares(tx).Upsert(ctx, &models.PageShare{
			PageID:          pageID,
			BookID:          bookID,
			SharedBy:        userID,
			Token:           s.newToken(),
			ContentSnapshot: page.Content,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "page shared", "book_id", bookID, "page_id", pageID, "user_id", userID, "share_id", info.ID)
	s.notifications.Notify(ctx, &models.Notification{
		UserID:        userID,
		Type:          models.NotificationPageShared,
		Title:         "Page shared",
		Message:       fmt.Sprintf("Page %d of %q has been shared successfully.", page.PageNumber, book.Title),
		RelatedBookID: &bookID,
		RelatedPageID: &pageID,
	})
	return info, nil
}

// RevokeBookShare deactivates the caller's active share of the book. The
// snapshot and token are kept for a later re-share. Without an active share
// it returns common.ErrNoActiveShare.
func (s *SharingService) RevokeBookShare(ctx context.Context, bookID, userID int64) error {
	if _, err := s.sharedBook(ctx, s.db, bookID, userID); err != nil {
		return err
	}
	if err := s.repomanager.BookShares(s.db).Deactivate(ctx, bookID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoActiveShare
		}
		return err
	}
	s.log.Info(ctx, "book share revoked", "book_id", bookID, "user_id", userID)
	return nil
}

// RevokePageShare deactivates the caller's active share of a page of the book.
func (s *SharingService) RevokePageShare(ctx context.Context, bookID, pageID, userID int64) error {
	if _, err := s.sharedBook(ctx, s.db, bookID, userID); err != nil {
		return err
	}
	if _, err := pageOfBook(ctx, s.repomanager, s.db, bookID, pageID); err != nil {
		return err
	}
	if err := s.repomanager.PageShares(s.db).Deactivate(ctx, pageID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoActiveShare
		}
		return err
	}
	s.log.Info(ctx, "page share revoked", "book_id", bookID, "page_id", pageID, "user_id", userID)
	return nil
}

// ResolvePublicBook returns the snapshot behind token. Malformed, unknown,
// revoked and deleted shares all yield the same common.ErrorNotFound.
func (s *SharingService) ResolvePublicBook(ctx context.Context, token string) (*models.PublicBook, error) {
	t, err := uuid.Parse(token)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	book, err := s.repomanager.BookShares(s.db).FindPublic(ctx, t)
	if err != nil {
		return nil, hideNotFound(err)
	}
	return book, nil
}

// ResolvePublicPage returns the page snapshot behind token, with the same
// not-found rules as ResolvePublicBook.
func (s *SharingService) ResolvePublicPage(ctx context.Context, token string) (*models.PublicPage, error) {
	t, err := uuid.Parse(token)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	page, err := s.repomanager.PageShares(s.db).FindPublic(ctx, t)
	if err != nil {
		return nil, hideNotFound(err)
	}
	return page, nil
}

// ExportPublicBook resolves token like ResolvePublicBook, writes the
// snapshot to the archive and returns a time-limited download URL.
func (s *SharingService) ExportPublicBook(ctx context.Context, token string) (string, error) {
	if s.archive == nil {
		return "", common.ErrorNotFound
	}
	t, err := uuid.Parse(token)
	if err != nil {
		return "", common.ErrorNotFound
	}
	book, err := s.repomanager.BookShares(s.db).FindPublic(ctx, t)
	if err != nil {
		return "", hideNotFound(err)
	}
	if err := s.archive.PutBookSnapshot(ctx, t, book); err != nil {
		return "", fmt.Errorf("archive snapshot: %w", err)
	}
	url, err := s.archive.PresignedSnapshotURL(ctx, t)
	if err != nil {
		return "", fmt.Errorf("presign snapshot: %w", err)
	}
	return url, nil
}

// sharedBook loads a non-deleted book the caller may share.
func (s *SharingService) sharedBook(ctx context.Context, db dbx.DBTX, bookID, userID int64) (*models.Book, error) {
	book, err := s.repomanager.Books(db).GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBookNotFound
		}
		return nil, err
	}
	if book.AuthorID != userID {
		return nil, common.ErrorForbidden
	}
	return book, nil
}

func snapshotOf(pages []*models.Page) []models.PageSnapshot {
	snapshot := make([]models.PageSnapshot, 0, len(pages))
	for _, p := range pages {
		snapshot = append(snapshot, models.PageSnapshot{PageNumber: p.PageNumber, Content: p.Content})
	}
	slices.SortStableFunc(snapshot, func(a, b models.PageSnapshot) int {
		return cmp.Compare(a.PageNumber, b.PageNumber)
	})
	return snapshot
}

func hideNotFound(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return err
}
