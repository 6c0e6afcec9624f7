// Package credentials stores users' AI provider keys. The stored api_key is
// opaque here; encoding_version says whether it is plaintext or a vault
// token.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	GetByID(ctx context.Context, id int64) (*models.Credential, error)
	// ListByUser returns non-deleted credentials, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Credential, error)
	// Update writes provider, label, model and is_active. The secret is
	// untouched.
	Update(ctx context.Context, c *models.Credential) error
	SoftDelete(ctx context.Context, id int64) error
	// FindActive returns the user's active non-deleted credentials, newest first.
	FindActive(ctx context.Context, userID int64) ([]*models.Credential, error)
	// ListByEncoding returns every row stored with version v, deleted or not,
	// ordered by id.
	ListByEncoding(ctx context.Context, v models.EncodingVersion) ([]*models.Credential, error)
	// UpdateSecret replaces the stored key and its encoding version.
	UpdateSecret(ctx context.Context, id int64, apiKey string, v models.EncodingVersion) error
}
