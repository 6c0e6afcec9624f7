package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// authenticate requires a "Bearer <access token>" header and stores the
// caller's id in the request context.
func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
			h.fail(w, r, common.ErrorUnauthorized)
			return
		}

		userID, err := h.svc.Users.Authenticate(strings.TrimSpace(token))
		if err != nil {
			h.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the id stored by authenticate.
func userIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// userKey buckets rate limits by authenticated user.
func userKey(r *http.Request) (string, error) {
	return strconv.FormatInt(userIDFromContext(r.Context()), 10), nil
}
