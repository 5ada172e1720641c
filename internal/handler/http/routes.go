package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
	})

	// routes for authenticated users
	router.Group(func(r chi.Router) {
		r.Use(h.requireLogin)

		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/me", h.me)
		r.Post("/api/auth/password", h.changePassword)
		r.Patch("/api/auth/profile", h.updateProfile)
	})

	// routes for administrators
	router.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Get("/api/admin/users", h.listUsers)
		r.Get("/api/admin/activity", h.recentActivity)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
