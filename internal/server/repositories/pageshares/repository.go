// Package pageshares stores public page share links with a frozen copy of
// the page content.
package pageshares

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Upsert creates or refreshes the share for (PageID, SharedBy). An
	// existing token is never replaced.
	Upsert(ctx context.Context, share *models.PageShare) (*models.ShareInfo, error)
	// Deactivate returns common.ErrorNotFound when there is no active share.
	Deactivate(ctx context.Context, pageID, userID int64) error
	FindPublic(ctx context.Context, token uuid.UUID) (*models.PublicPage, error)
}
