package authn

import (
	"github.com/go-chi/chi/v5"

	"github.com/exodologio/exodologio/internal/app/system/auth"
)

// Routes returns the router for the account endpoints, mounted under
// /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/password-reset", h.RequestPasswordReset)
	r.Post("/password-reset/complete", h.CompletePasswordReset)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})

	return r
}
