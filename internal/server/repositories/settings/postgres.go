package settings

import (
	"context"
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

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	query := `
		INSERT INTO user_settings (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, auto_save_enabled, auto_save_interval, notification_enabled,
			theme, profile_visible, view_mode, layout_mode, live_preview, modified_at
	`
	var (
		s      models.UserSettings
		theme  string
		layout string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.AutoSaveEnabled, &s.AutoSaveInterval, &s.NotificationEnabled,
		&theme, &s.ProfileVisible, &s.ViewMode, &layout, &s.LivePreview, &s.ModifiedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Theme = models.Theme(theme)
	s.LayoutMode = models.LayoutMode(layout)
	return &s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.UserSettings) error {
	query := `
		UPDATE user_settings
		SET auto_save_enabled = $2, auto_save_interval = $3, notification_enabled = $4,
			theme = $5, profile_visible = $6, view_mode = $7, layout_mode = $8,
			live_preview = $9, modified_at = now()
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.UserID, s.AutoSaveEnabled, s.AutoSaveInterval, s.NotificationEnabled,
		string(s.Theme), s.ProfileVisible, s.ViewMode, string(s.LayoutMode), s.LivePreview,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
