// Package household implements the household endpoints: create, join via
// invite code, invite rotation, and per-household settings.
package household

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/exodologio/exodologio/internal/app/features/errors"
	householdstore "github.com/exodologio/exodologio/internal/app/store/households"
	settingsstore "github.com/exodologio/exodologio/internal/app/store/settings"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/auditlog"
	"github.com/exodologio/exodologio/internal/app/system/auth"
	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/htmlsanitize"
	"github.com/exodologio/exodologio/internal/app/system/timeouts"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// Handler holds the household feature dependencies.
type Handler struct {
	Users      *userstore.Store
	Households *householdstore.Store
	Settings   *settingsstore.Store
	Audit      *auditlog.Logger
	BaseURL    string
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, households *householdstore.Store, settings *settingsstore.Store, audit *auditlog.Logger, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Households: households,
		Settings:   settings,
		Audit:      audit,
		BaseURL:    baseURL,
		Log:        log,
	}
}

type memberPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	JoinedAt    string `json:"joined_at"`
}

type householdResponse struct {
	ID         string          `json:"id"`
	InviteCode string          `json:"invite_code"`
	InviteLink string          `json:"invite_link"`
	CreatedAt  string          `json:"created_at"`
	Members    []memberPayload `json:"members"`
}

// Get handles GET /api/household: the signed-in user's household with its
// member list and sharable invite link.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "household.get")
	defer cancel()

	u, err := h.currentUser(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	if u.HouseholdID == nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.NotFound, "you have not joined a household yet"))
		return
	}

	hh, err := h.Households.GetByID(ctx, *u.HouseholdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	members, err := h.Households.Members(ctx, hh.ID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, h.payloadFor(hh, members))
}

type createRequest struct {
	DisplayName string `json:"display_name"`
	InviteBase  string `json:"invite_base"`
}

// Create handles POST /api/household: bootstraps a household for a user who
// has none yet.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "household.create")
	defer cancel()

	u, err := h.currentUser(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	if u.HouseholdID != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "you already belong to a household"))
		return
	}

	name := req.DisplayName
	if name == "" {
		name = u.DisplayName
	}
	hh, err := h.Households.Create(ctx, u, name, req.InviteBase)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.Audit.HouseholdCreated(ctx, r, u.ID, hh.ID, hh.InviteCode)

	members, err := h.Households.Members(ctx, hh.ID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, h.payloadFor(hh, members))
}

type joinRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// Join handles POST /api/household/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "household.join")
	defer cancel()

	u, err := h.currentUser(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	name := req.DisplayName
	if name == "" {
		name = u.DisplayName
	}
	hh, err := h.Households.Join(ctx, u, name, req.Code)
	if err != nil {
		h.Audit.JoinFailed(ctx, r, u.ID, req.Code, errs.Code(errs.KindOf(err)))
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.Audit.HouseholdJoined(ctx, r, u.ID, hh.ID, hh.InviteCode)

	members, err := h.Households.Members(ctx, hh.ID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, h.payloadFor(hh, members))
}

type rotateRequest struct {
	Code string `json:"code"`
}

// RotateInvite handles PUT /api/household/invite: replaces the invite code
// with a caller-chosen one.
func (h *Handler) RotateInvite(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "household.rotate_invite")
	defer cancel()

	u, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	before, err := h.Households.GetByID(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	hh, err := h.Households.RotateInvite(ctx, householdID, u.ID, req.Code)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	if hh.InviteCode != before.InviteCode {
		h.Audit.InviteRotated(ctx, r, u.ID, householdID, before.InviteCode, hh.InviteCode)
	}

	members, err := h.Households.Members(ctx, hh.ID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, h.payloadFor(hh, members))
}

type settingsResponse struct {
	BankWallets []string `json:"bank_wallets"`
}

// GetSettings handles GET /api/household/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "household.settings")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	settings, err := h.Settings.Get(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, settingsResponse{BankWallets: settings.BankWallets})
}

type addWalletRequest struct {
	Name string `json:"name"`
}

// AddBankWallet handles POST /api/household/settings/bank-wallets. Adding an
// existing name is a no-op; the list keeps set semantics.
func (h *Handler) AddBankWallet(w http.ResponseWriter, r *http.Request) {
	var req addWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}
	name := htmlsanitize.StripOneLine(req.Name)
	if name == "" {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "name is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "household.add_bank_wallet")
	defer cancel()

	u, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	if err := h.Settings.AddBankWallet(ctx, householdID, u.ID, name); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.Audit.BankWalletAdded(ctx, r, u.ID, householdID, name)

	settings, err := h.Settings.Get(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, settingsResponse{BankWallets: settings.BankWallets})
}

// --- helpers ---

// currentUser loads the full user record behind the session.
func (h *Handler) currentUser(ctx context.Context, r *http.Request) (*models.User, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return nil, errs.New(errs.BadCredentials, "not signed in")
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return nil, errs.New(errs.BadCredentials, "corrupt session")
	}
	return h.Users.GetByID(ctx, id)
}

// requireHousehold loads the user and their household pointer, rejecting
// users who have none.
func (h *Handler) requireHousehold(ctx context.Context, r *http.Request) (*models.User, primitive.ObjectID, error) {
	u, err := h.currentUser(ctx, r)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if u.HouseholdID == nil {
		return nil, primitive.NilObjectID, errs.New(errs.PermissionDenied, "you have not joined a household yet")
	}
	return u, *u.HouseholdID, nil
}

func (h *Handler) payloadFor(hh *models.Household, members []models.Membership) householdResponse {
	resp := householdResponse{
		ID:         hh.ID.Hex(),
		InviteCode: hh.InviteCode,
		InviteLink: h.BaseURL + "/join?code=" + url.QueryEscape(hh.InviteCode),
		CreatedAt:  hh.CreatedAt.Format(time.RFC3339),
		Members:    []memberPayload{},
	}
	for _, m := range members {
		resp.Members = append(resp.Members, memberPayload{
			UserID:      m.UserID.Hex(),
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt.Format(time.RFC3339),
		})
	}
	return resp
}
