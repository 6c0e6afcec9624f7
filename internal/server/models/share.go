package models

import (
	"time"

	"github.com/google/uuid"
)

// PageSnapshot is one page of a frozen book snapshot.
type PageSnapshot struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

type BookShare struct {
	ID            int64
	BookID        int64
	SharedBy      int64
	Token         uuid.UUID
	IsActive      bool
	PagesSnapshot []PageSnapshot
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

type PageShare struct {
	ID              int64
	PageID          int64
	BookID          int64
	SharedBy        int64
	Token           uuid.UUID
	IsActive        bool
	ContentSnapshot string
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// ShareInfo is returned when a share is created or refreshed. It never
// carries the snapshot.
type ShareInfo struct {
	ID         int64     `json:"id"`
	ShareToken uuid.UUID `json:"share_token"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicBook is the unauthenticated view of a shared book.
type PublicBook struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Year        *int           `json:"year"`
	Status      BookStatus     `json:"status"`
	Pages       []PageSnapshot `json:"pages"`
}

// PublicPage is the unauthenticated view of a shared page.
type PublicPage struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	PageNumber   int       `json:"page_number"`
	BookTitle    string    `json:"book_title"`
	BookIsPublic bool      `json:"book_is_public"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}
