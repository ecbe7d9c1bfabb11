// Package authn implements password-based account endpoints: register,
// login, logout, session introspection, and password reset.
package authn

import (
	"encoding/json"
	"net/http"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/exodologio/exodologio/internal/app/features/errors"
	resetstore "github.com/exodologio/exodologio/internal/app/store/resets"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/auditlog"
	"github.com/exodologio/exodologio/internal/app/system/auth"
	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/mailer"
	"github.com/exodologio/exodologio/internal/app/system/normalize"
	"github.com/exodologio/exodologio/internal/app/system/ratelimit"
	"github.com/exodologio/exodologio/internal/app/system/timeouts"
	"github.com/exodologio/exodologio/internal/domain/models"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Handler holds the authn feature dependencies.
type Handler struct {
	Users   *userstore.Store
	Resets  *resetstore.Store
	Audit   *auditlog.Logger
	Mailer  *mailer.Mailer
	Limiter *ratelimit.Limiter
	BaseURL string
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, resets *resetstore.Store, audit *auditlog.Logger, m *mailer.Mailer, limiter *ratelimit.Limiter, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Resets:  resets,
		Audit:   audit,
		Mailer:  m,
		Limiter: limiter,
		BaseURL: baseURL,
		Log:     log,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type sessionResponse struct {
	User userPayload `json:"user"`
}

type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AuthMethod  string `json:"auth_method"`
	HouseholdID string `json:"household_id,omitempty"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	key := ratelimit.ClientKey(r)
	if !h.Limiter.Allow(key) {
		apierrors.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
			"error":   "rate-limited",
			"message": "too many attempts; try again shortly",
		})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	email := normalize.Email(req.Email)
	if !emailRe.MatchString(email) {
		apierrors.WriteError(w, h.Log, errs.New(errs.InvalidEmail, "email address is not valid"))
		return
	}
	if len(req.Password) < minPasswordLen {
		apierrors.WriteError(w, h.Log, errs.New(errs.WeakPassword, "password must be at least 6 characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "authn.register")
	defer cancel()

	name := req.DisplayName
	if name == "" {
		name = email
	}
	u, err := h.Users.Create(ctx, userFromRegistration(email, name, hash))
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.Audit.Registered(ctx, r, u.ID, u.AuthMethod, u.Email)

	if err := auth.SignIn(w, r, auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName, Email: u.Email}); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, sessionResponse{User: payloadFor(&u)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	key := ratelimit.ClientKey(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "authn.login")
	defer cancel()

	if !h.Limiter.Allow(key) {
		h.Audit.LoginFailedRateLimit(ctx, r, req.Email)
		apierrors.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
			"error":   "rate-limited",
			"message": "too many attempts; try again shortly",
		})
		return
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errs.KindOf(err) == errs.NotFound {
			h.Audit.LoginFailedUserNotFound(ctx, r, req.Email)
			apierrors.WriteError(w, h.Log, errs.New(errs.BadCredentials, "wrong email or password"))
			return
		}
		apierrors.WriteError(w, h.Log, err)
		return
	}
	if len(u.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		apierrors.WriteError(w, h.Log, errs.New(errs.BadCredentials, "wrong email or password"))
		return
	}

	h.Limiter.Reset(key)
	h.Audit.LoginSuccess(ctx, r, u.ID, u.AuthMethod, u.Email)

	if err := auth.SignIn(w, r, auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName, Email: u.Email}); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, sessionResponse{User: payloadFor(u)})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}
	if err := auth.SignOut(w, r); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session: who am I, with the fresh household
// pointer from the database rather than the cookie snapshot.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.WriteError(w, h.Log, errs.New(errs.BadCredentials, "not signed in"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "authn.session")
	defer cancel()

	id, err := objectIDFromHex(su.ID)
	if err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.BadCredentials, "corrupt session"))
		return
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, sessionResponse{User: payloadFor(u)})
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /api/auth/password-reset. Always answers
// 204 so the endpoint cannot be used to probe which emails exist.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	key := ratelimit.ClientKey(r)
	if !h.Limiter.Allow(key) {
		apierrors.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
			"error":   "rate-limited",
			"message": "too many attempts; try again shortly",
		})
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "authn.password_reset")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	token, err := h.Resets.Issue(ctx, u.ID)
	if err != nil {
		h.Log.Error("issue reset token", zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.Audit.PasswordResetRequested(ctx, r, u.ID, u.Email)
	h.Mailer.Send(ctx, mailer.BuildPasswordResetEmail(mailer.PasswordResetData{
		To:        u.Email,
		ResetLink: h.BaseURL + "/reset?token=" + token,
		ExpiresIn: "30 minutes",
	}))
	w.WriteHeader(http.StatusNoContent)
}

type completeResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CompletePasswordReset handles POST /api/auth/password-reset/complete.
func (h *Handler) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "invalid JSON body"))
		return
	}
	if len(req.Password) < minPasswordLen {
		apierrors.WriteError(w, h.Log, errs.New(errs.WeakPassword, "password must be at least 6 characters"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "authn.password_reset_complete")
	defer cancel()

	userID, err := h.Resets.Consume(ctx, req.Token)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	if err := h.Users.SetPasswordHash(ctx, userID, hash); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.Audit.PasswordChanged(ctx, r, userID)
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func userFromRegistration(email, name string, hash []byte) models.User {
	return models.User{
		Email:        email,
		DisplayName:  name,
		AuthMethod:   "password",
		PasswordHash: hash,
	}
}

func payloadFor(u *models.User) userPayload {
	p := userPayload{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AuthMethod:  u.AuthMethod,
	}
	if u.HouseholdID != nil {
		p.HouseholdID = u.HouseholdID.Hex()
	}
	return p
}

func objectIDFromHex(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}
