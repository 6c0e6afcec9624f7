// Package settings stores the per-user editor preferences.
package settings

import (
	"context"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the user's settings, inserting the defaults on
	// first use. Concurrent first calls end up with the same row.
	GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error)

	// Update overwrites every preference of s.UserID.
	Update(ctx context.Context, s *models.UserSettings) error
}
