package transactions

import (
	"github.com/go-chi/chi/v5"

	"github.com/exodologio/exodologio/internal/app/system/auth"
)

// Routes returns the router for the transaction endpoints, mounted under
// /api/transactions. Everything requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Get("/summary", h.Summary)
	r.Get("/months", h.Months)
	r.Get("/stream", h.Stream)
	r.Get("/export.csv", h.ExportCSV)
	r.Get("/export.xlsx", h.ExportXLSX)

	return r
}
