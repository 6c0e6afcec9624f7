package models

import "time"

type BookStatus string

const (
	BookStatusDraft     BookStatus = "Draft"
	BookStatusPublished BookStatus = "Published"
)

type Book struct {
	ID          int64      `json:"id"`
	AuthorID    int64      `json:"author_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Year        *int       `json:"year"`
	Status      BookStatus `json:"status"`
	Pages       []*Page    `json:"pages,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
}

func (b *Book) IsPublished() bool {
	return b.Status == BookStatusPublished
}

type Page struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
