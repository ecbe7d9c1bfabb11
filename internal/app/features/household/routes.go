package household

import (
	"github.com/go-chi/chi/v5"

	"github.com/exodologio/exodologio/internal/app/system/auth"
)

// Routes returns the router for the household endpoints, mounted under
// /api/household. Everything requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.Get)
	r.Post("/", h.Create)
	r.Post("/join", h.Join)
	r.Put("/invite", h.RotateInvite)
	r.Get("/settings", h.GetSettings)
	r.Post("/settings/bank-wallets", h.AddBankWallet)

	return r
}
