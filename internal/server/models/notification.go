package models

import "time"

type NotificationType string

const (
	NotificationBookShared       NotificationType = "BookShared"
	NotificationPageShared       NotificationType = "PageShared"
	NotificationBookPublished    NotificationType = "BookPublished"
	NotificationAIRefineComplete NotificationType = "AIRefineComplete"
	NotificationGeneral          NotificationType = "General"
)

type Notification struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"-"`
	Type          NotificationType `json:"notification_type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	IsRead        bool             `json:"is_read"`
	RelatedBookID *int64           `json:"related_book_id"`
	RelatedPageID *int64           `json:"related_page_id"`
	CreatedAt     time.Time        `json:"created_at"`
}
