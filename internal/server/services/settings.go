package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/dbx"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
)

// Auto-save interval bounds, in seconds.
const (
	minAutoSaveInterval = 1
	maxAutoSaveInterval = 3600
)

// SettingsPatch is a partial update of the user's preferences; nil fields
// keep their stored value.
type SettingsPatch struct {
	AutoSaveEnabled     *bool              `json:"auto_save_enabled"`
	AutoSaveInterval    *int               `json:"auto_save_interval"`
	NotificationEnabled *bool              `json:"notification_enabled"`
	Theme               *models.Theme      `json:"theme"`
	ProfileVisible      *bool              `json:"profile_visible"`
	ViewMode            *bool              `json:"view_mode"`
	LayoutMode          *models.LayoutMode `json:"layout_mode"`
	LivePreview         *bool              `json:"live_preview"`
}

func (p *SettingsPatch) validate() error {
	if p.AutoSaveInterval != nil && (*p.AutoSaveInterval < minAutoSaveInterval || *p.AutoSaveInterval > maxAutoSaveInterval) {
		return fmt.Errorf("%w: auto_save_interval must be between %d and %d seconds", common.ErrorValidation, minAutoSaveInterval, maxAutoSaveInterval)
	}
	if p.Theme != nil && !p.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", common.ErrorValidation, *p.Theme)
	}
	if p.LayoutMode != nil && !p.LayoutMode.Valid() {
		return fmt.Errorf("%w: unknown layout mode %q", common.ErrorValidation, *p.LayoutMode)
	}
	return nil
}

func (p *SettingsPatch) apply(s *models.UserSettings) {
	setIf(&s.AutoSaveEnabled, p.AutoSaveEnabled)
	setIf(&s.AutoSaveInterval, p.AutoSaveInterval)
	setIf(&s.NotificationEnabled, p.NotificationEnabled)
	setIf(&s.Theme, p.Theme)
	setIf(&s.ProfileVisible, p.ProfileVisible)
	setIf(&s.ViewMode, p.ViewMode)
	setIf(&s.LayoutMode, p.LayoutMode)
	setIf(&s.LivePreview, p.LivePreview)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// SettingsService reads and edits editor preferences. A user without a
// settings row gets the defaults stored on first access.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *SettingsService {
	return &SettingsService{db: db, repomanager: m, log: log.With("module", "settings")}
}

func (s *SettingsService) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return s.repomanager.Settings(s.db).GetOrCreate(ctx, userID)
}

func (s *SettingsService) Update(ctx context.Context, userID int64, patch SettingsPatch) (*models.UserSettings, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var settings *models.UserSettings
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		settings, err = s.repomanager.Settings(tx).GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		patch.apply(settings)
		return s.repomanager.Settings(tx).Update(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "settings updated", "user_id", userID)
	return settings, nil
}
