package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/go-chi/chi/v5"
)

type exportResponse struct {
	URL string `json:"url"`
}

func (h *handler) shareBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	info, err := h.svc.Sharing.CreateOrRefreshBookShare(r.Context(), bookID, userIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrBookNotPublished) {
			h.respond(w, r, http.StatusBadRequest, "Only published books can be shared. Please publish the book first.", nil)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "Book shared successfully.", info)
}

func (h *handler) revokeBookShare(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	if err := h.svc.Sharing.RevokeBookShare(r.Context(), bookID, userIDFromContext(r.Context())); err != nil {
		if errors.Is(err, common.ErrNoActiveShare) {
			h.respond(w, r, http.StatusNotFound, "No active share found for this book", nil)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Book share revoked successfully.", nil)
}

func (h *handler) sharePage(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pageID, ok := h.idParam(w, r, "pageID")
	if !ok {
		return
	}
	info, err := h.svc.Sharing.CreateOrRefreshPageShare(r.Context(), bookID, pageID, userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "Page shared successfully.", info)
}

func (h *handler) revokePageShare(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.idParam(w, r, "bookID")
	if !ok {
		return
	}
	pageID, ok := h.idParam(w, r, "pageID")
	if !ok {
		return
	}
	if err := h.svc.Sharing.RevokePageShare(r.Context(), bookID, pageID, userIDFromContext(r.Context())); err != nil {
		if errors.Is(err, common.ErrNoActiveShare) {
			h.respond(w, r, http.StatusNotFound, "No active share found for this page", nil)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Page share revoked successfully.", nil)
}

func (h *handler) publicBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.Sharing.ResolvePublicBook(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.publicFail(w, r, err, "Shared book not found or link has been revoked")
		return
	}
	h.respond(w, r, http.StatusOK, "Shared book retrieved successfully.", book)
}

func (h *handler) publicPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Sharing.ResolvePublicPage(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.publicFail(w, r, err, "Shared page not found or link has been revoked")
		return
	}
	h.respond(w, r, http.StatusOK, "Shared page retrieved successfully.", page)
}

func (h *handler) exportBook(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.Sharing.ExportPublicBook(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.publicFail(w, r, err, "Shared book not found or link has been revoked")
		return
	}
	h.respond(w, r, http.StatusOK, "Download link created.", exportResponse{URL: url})
}

// publicFail gives every kind of missing share the same 404 body.
func (h *handler) publicFail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, common.ErrorNotFound) {
		h.respond(w, r, http.StatusNotFound, notFound, nil)
		return
	}
	h.fail(w, r, err)
}
