package rest

import (
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

type pageRequest struct {
	Content string `json:"content"`
}

func (h *handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Books.ListBooks(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Books retrieved successfully.", books)
}

func (h *handler) createBook(w http.ResponseWriter, r *http.Request) {
	var in services.BookInput
	if !h.decode(w, r, &in) {
		return
	}
	book, err := h.svc.Books.CreateBook(r.Context(), userIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "Book created successfully.", book)
}

func (h *handler) getBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	book, err := h.svc.Books.GetBook(r.Context(), userIDFromContext(r.Context()), bookID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Book retrieved successfully.", book)
}

func (h *handler) updateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	var in services.BookInput
	if !h.decode(w, r, &in) {
		return
	}
	book, err := h.svc.Books.UpdateBook(r.Context(), userIDFromContext(r.Context()), bookID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Book updated successfully.", book)
}

func (h *handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	if err := h.svc.Books.DeleteBook(r.Context(), userIDFromContext(r.Context()), bookID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Book deleted successfully.", nil)
}

func (h *handler) togglePublish(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	book, err := h.svc.Books.TogglePublish(r.Context(), userIDFromContext(r.Context()), bookID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Book status changed to "+string(book.Status)+".", book)
}

func (h *handler) listPages(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pages, err := h.svc.Books.ListPages(r.Context(), userIDFromContext(r.Context()), bookID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Pages retrieved successfully.", pages)
}

func (h *handler) getPage(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pageID, ok := h.idParam(w, r, "pageID")
	if !ok {
		return
	}
	page, err := h.svc.Books.GetPage(r.Context(), userIDFromContext(r.Context()), bookID, pageID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Page retrieved successfully.", page)
}

func (h *handler) createPage(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	var req pageRequest
	if !h.decode(w, r, &req) {
		return
	}
	page, err := h.svc.Books.CreatePage(r.Context(), userIDFromContext(r.Context()), bookID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "Page created successfully.", page)
}

func (h *handler) updatePage(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pageID, ok := h.idParam(w, r, "pageID")
	if !ok {
		return
	}
	var req pageRequest
	if !h.decode(w, r, &req) {
		return
	}
	page, err := h.svc.Books.UpdatePage(r.Context(), userIDFromContext(r.Context()), bookID, pageID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Page updated successfully.", page)
}

func (h *handler) deletePage(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pageID, ok := h.idParam(w, r, "pageID")
	if !ok {
		return
	}
	if err := h.svc.Books.DeletePage(r.Context(), userIDFromContext(r.Context()), bookID, pageID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Page deleted successfully.", nil)
}
