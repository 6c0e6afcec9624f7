package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RateLimits are requests per minute. Public and Auth are counted per client
// IP, Sharing and AI per user.
type RateLimits struct {
	Public  int
	Auth    int
	Sharing int
	AI      int
}

func DefaultRateLimits() RateLimits {
	return RateLimits{Public: 10, Auth: 5, Sharing: 30, AI: 20}
}

type handler struct {
	svc Services
	log logging.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(svc Services, limits RateLimits, log logging.Logger) http.Handler {
	h := &handler{svc: svc, log: log.With("module", "rest")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.limitByIP(limits.Public))
			r.Get("/shared/book/{token}", h.publicBook)
			r.Get("/shared/book/{token}/export", h.exportBook)
			r.Get("/shared/page/{token}", h.publicPage)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.limitByIP(limits.Auth))
			r.Post("/auth/register", h.register)
			r.Post("/auth/login", h.login)
			r.Post("/auth/refresh", h.refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/auth/profile", h.profile)
			r.Put("/auth/profile", h.updateProfile)
			r.Put("/auth/change-password", h.changePassword)
			r.Delete("/auth/delete-account", h.deleteAccount)

			r.Get("/settings", h.getSettings)
			r.Put("/settings", h.updateSettings)

			r.Get("/books", h.listBooks)
			r.Post("/books", h.createBook)
			r.Route("/books/{bookID}", func(r chi.Router) {
				r.Get("/", h.getBook)
				r.Put("/", h.updateBook)
				r.Delete("/", h.deleteBook)
				r.Post("/publish", h.togglePublish)

				r.Get("/pages", h.listPages)
				r.Post("/pages", h.createPage)
				r.Get("/pages/{pageID}", h.getPage)
				r.Put("/pages/{pageID}", h.updatePage)
				r.Delete("/pages/{pageID}", h.deletePage)

				r.Group(func(r chi.Router) {
					r.Use(h.limitByUser(limits.Sharing))
					r.Post("/share", h.shareBook)
					r.Delete("/share", h.revokeBookShare)
					r.Post("/pages/{pageID}/share", h.sharePage)
					r.Delete("/pages/{pageID}/share", h.revokePageShare)
				})
			})

			r.Get("/ai-keys", h.listKeys)
			r.Post("/ai-keys", h.createKey)
			r.Put("/ai-keys/{keyID}", h.updateKey)
			r.Delete("/ai-keys/{keyID}", h.deleteKey)

			r.With(h.limitByUser(limits.AI)).Post("/ai/refine", h.refine)

			r.Get("/notifications", h.listNotifications)
			r.Put("/notifications/read-all", h.markAllRead)
			r.Post("/notifications/{id}/read", h.markRead)
			r.Put("/notifications/{id}/read", h.markRead)
			r.Delete("/notifications/{id}", h.deleteNotification)
		})
	})

	return r
}

func (h *handler) limitByIP(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(h.tooManyRequests),
	)
}

func (h *handler) limitByUser(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(userKey),
		httprate.WithLimitHandler(h.tooManyRequests),
	)
}

func (h *handler) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusTooManyRequests, "request was throttled, try again later", nil)
}
