package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for Google OAuth, mounted under /api/auth/google.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeStart)
	r.Get("/callback", h.ServeCallback)
	return r
}
