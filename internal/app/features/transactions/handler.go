// Package transactions implements the transaction endpoints: CRUD, windowed
// listing, summary aggregates, the live SSE feed, and file exports.
package transactions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/exodologio/exodologio/internal/app/features/errors"
	txstore "github.com/exodologio/exodologio/internal/app/store/transactions"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/auth"
	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/ledger"
	"github.com/exodologio/exodologio/internal/app/system/timeouts"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// Handler holds the transactions feature dependencies.
type Handler struct {
	Users *userstore.Store
	Txs   *txstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, txs *txstore.Store, log *zap.Logger) *Handler {
	return &Handler{Users: users, Txs: txs, Log: log}
}

type listResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

// List handles GET /api/transactions. Optional ?month=YYYY-MM or
// ?start=YYYY-MM-DD&end=YYYY-MM-DD narrow the window; bare requests return
// everything.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.list")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	txs, err := h.Txs.List(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, listResponse{Transactions: applyWindow(txs, r)})
}

// Create handles POST /api/transactions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in txstore.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.create")
	defer cancel()

	u, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	t, err := h.Txs.Create(ctx, householdID, u.ID, in)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/transactions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.NotFound, "transaction not found"))
		return
	}

	var in txstore.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.update")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	t, err := h.Txs.Update(ctx, householdID, id, in)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.NotFound, "transaction not found"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.delete")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	if err := h.Txs.Delete(ctx, householdID, id); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Summary           ledger.Summary `json:"summary"`
	ExpenseByCategory []ledger.Total `json:"expense_by_category"`
	IncomeBySource    []ledger.Total `json:"income_by_source"`
}

// Summary handles GET /api/transactions/summary with the same window
// parameters as List.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.summary")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	txs, err := h.Txs.List(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	window := applyWindow(txs, r)

	apierrors.WriteJSON(w, http.StatusOK, summaryResponse{
		Summary:           ledger.Summarize(window),
		ExpenseByCategory: ledger.ExpenseByCategory(window),
		IncomeBySource:    ledger.IncomeBySource(window),
	})
}

type monthsResponse struct {
	Months []string `json:"months"`
}

// Months handles GET /api/transactions/months: the distinct months present,
// newest first, for the client's month picker.
func (h *Handler) Months(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transactions.months")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	txs, err := h.Txs.List(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, monthsResponse{Months: ledger.MonthOptions(txs)})
}

// --- helpers ---

// applyWindow narrows txs per the request's month or start/end parameters.
func applyWindow(txs []models.Transaction, r *http.Request) []models.Transaction {
	q := r.URL.Query()
	if month := q.Get("month"); month != "" {
		return ledger.FilterMonth(txs, month)
	}
	start, end := q.Get("start"), q.Get("end")
	if start != "" || end != "" {
		return ledger.FilterRange(txs, start, end)
	}
	return txs
}

func (h *Handler) requireHousehold(ctx context.Context, r *http.Request) (*models.User, primitive.ObjectID, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return nil, primitive.NilObjectID, errs.New(errs.BadCredentials, "not signed in")
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return nil, primitive.NilObjectID, errs.New(errs.BadCredentials, "corrupt session")
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if u.HouseholdID == nil {
		return nil, primitive.NilObjectID, errs.New(errs.PermissionDenied, "you have not joined a household yet")
	}
	return u, *u.HouseholdID, nil
}
