package models

import "time"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// LayoutMode selects whether the editor shows a whole book or one page.
type LayoutMode string

const (
	LayoutBook LayoutMode = "book"
	LayoutPage LayoutMode = "page"
)

func (m LayoutMode) Valid() bool {
	return m == LayoutBook || m == LayoutPage
}

// UserSettings are the editor preferences of one user. ViewMode false means
// edit mode. AutoSaveInterval is in seconds.
type UserSettings struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"-"`
	AutoSaveEnabled     bool       `json:"auto_save_enabled"`
	AutoSaveInterval    int        `json:"auto_save_interval"`
	NotificationEnabled bool       `json:"notification_enabled"`
	Theme               Theme      `json:"theme"`
	ProfileVisible      bool       `json:"profile_visible"`
	ViewMode            bool       `json:"view_mode"`
	LayoutMode          LayoutMode `json:"layout_mode"`
	LivePreview         bool       `json:"live_preview"`
	ModifiedAt          time.Time  `json:"-"`
}

// DefaultUserSettings mirrors the column defaults of a fresh settings row.
func DefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		AutoSaveEnabled:     true,
		AutoSaveInterval:    2,
		NotificationEnabled: true,
		Theme:               ThemeLight,
		ProfileVisible:      true,
		LayoutMode:          LayoutBook,
	}
}
