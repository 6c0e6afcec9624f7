// Package bookshares stores public book share links and their frozen page
// snapshots. There is at most one row per (book, sharer).
package bookshares

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Upsert creates the share for (BookID, SharedBy) or refreshes the
	// existing one: the snapshot is replaced and the share reactivated, but
	// an existing token is kept. share.Token is used only for a new row.
	Upsert(ctx context.Context, share *models.BookShare) (*models.ShareInfo, error)
	// Deactivate turns off the active share of (bookID, userID). It returns
	// common.ErrorNotFound when there is no active share.
	Deactivate(ctx context.Context, bookID, userID int64) error
	// FindPublic returns the projection of an active, non-deleted share whose
	// book is not deleted.
	FindPublic(ctx context.Context, token uuid.UUID) (*models.PublicBook, error)
}
