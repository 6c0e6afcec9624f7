// Package refreshtokens stores the opaque refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, expiring validity from now.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes token; deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every token issued to userID.
	DeleteByUser(ctx context.Context, userID int64) error
}
