package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/server/ai"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies; page content is the largest input.
const maxBodyBytes = 4 << 20

// envelope is the shape of every response body.
type envelope struct {
	Message string `json:"message"`
	Results any    `json:"results"`
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, status int, message string, results any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Message: message, Results: results}); err != nil {
		h.log.Warn(r.Context(), "response not written", "error", err)
	}
}

// fail maps err onto a status code. Unknown errors are logged and reported
// without detail.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.respond(w, r, status, message, nil)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrNoActiveShare):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "you do not have permission to perform this action"
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrBookNotPublished),
		errors.Is(err, common.ErrNoAPIKey):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ai.ErrProvider):
		return http.StatusBadRequest, ai.FriendlyMessage(err)
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, r, fmt.Errorf("%w: invalid request body", common.ErrorValidation))
		return false
	}
	return true
}

// idParam reads a numeric path parameter. Anything that is not a positive
// integer cannot name a row and is reported as not found.
func (h *handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		h.fail(w, r, common.ErrorNotFound)
		return 0, false
	}
	return id, true
}
