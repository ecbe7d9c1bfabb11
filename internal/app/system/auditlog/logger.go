// Package auditlog records who did what: sign-ins, registrations, household
// membership changes, invite rotations. Events go to MongoDB, zap, both, or
// neither, per category configuration.
package auditlog

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/store/audit"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// Config holds audit logging configuration. Each category accepts
// "all" (MongoDB + zap), "db", "log", or "off".
type Config struct {
	Auth      string
	Household string
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(ev models.AuditEvent) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", ev.Category),
		zap.String("event_type", ev.EventType),
		zap.Bool("success", ev.Success),
		zap.String("ip", ev.IP),
	}
	if ev.UserID != nil {
		fields = append(fields, zap.String("user_id", ev.UserID.Hex()))
	}
	if ev.Failure != "" {
		fields = append(fields, zap.String("failure", ev.Failure))
	}
	for k, v := range ev.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if ev.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration. A nil Logger is a
// no-op, which lets tests pass nil instead of wiring the full stack.
func (l *Logger) Log(ctx context.Context, ev models.AuditEvent) {
	if l == nil {
		return
	}

	var setting string
	switch ev.Category {
	case models.AuditCategoryAuth:
		setting = l.config.Auth
	case models.AuditCategoryHousehold:
		setting = l.config.Household
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(ev)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, ev); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", ev.EventType),
			)
		}
	}
}

// --- Authentication events ---

// Registered logs a successful account creation.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "registered",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details:   map[string]string{"auth_method": authMethod, "email": email},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, email string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "login_success",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details:   map[string]string{"auth_method": authMethod, "email": email},
	})
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "login_failed",
		IP:        clientIP(r),
		Success:   false,
		Failure:   "user not found",
		Details:   map[string]string{"attempted_email": attemptedEmail},
	})
}

// LoginFailedWrongPassword logs a failed login due to a wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "login_failed",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   false,
		Failure:   "wrong password",
		Details:   map[string]string{"email": email},
	})
}

// LoginFailedRateLimit logs a login blocked by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "login_failed",
		IP:        clientIP(r),
		Success:   false,
		Failure:   "rate limit exceeded",
		Details:   map[string]string{"attempted_email": attemptedEmail},
	})
}

// Logout logs a user logout. Accepts the string ID from SessionUser.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "logout",
		UserID:    userID,
		IP:        clientIP(r),
		Success:   true,
	})
}

// PasswordResetRequested logs a reset token issue.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "password_reset_requested",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// PasswordChanged logs a completed password reset.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryAuth,
		EventType: "password_changed",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
	})
}

// --- Household events ---

// HouseholdCreated logs a new household bootstrap.
func (l *Logger) HouseholdCreated(ctx context.Context, r *http.Request, userID, householdID primitive.ObjectID, inviteCode string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryHousehold,
		EventType: "household_created",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details: map[string]string{
			"household_id": householdID.Hex(),
			"invite_code":  inviteCode,
		},
	})
}

// HouseholdJoined logs a join via invite code.
func (l *Logger) HouseholdJoined(ctx context.Context, r *http.Request, userID, householdID primitive.ObjectID, inviteCode string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryHousehold,
		EventType: "household_joined",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details: map[string]string{
			"household_id": householdID.Hex(),
			"invite_code":  inviteCode,
		},
	})
}

// JoinFailed logs a failed join attempt (bad or unknown code).
func (l *Logger) JoinFailed(ctx context.Context, r *http.Request, userID primitive.ObjectID, attemptedCode, reason string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryHousehold,
		EventType: "household_join_failed",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   false,
		Failure:   reason,
		Details:   map[string]string{"attempted_code": attemptedCode},
	})
}

// InviteRotated logs an invite code rotation.
func (l *Logger) InviteRotated(ctx context.Context, r *http.Request, userID, householdID primitive.ObjectID, oldCode, newCode string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryHousehold,
		EventType: "invite_rotated",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details: map[string]string{
			"household_id": householdID.Hex(),
			"old_code":     oldCode,
			"new_code":     newCode,
		},
	})
}

// BankWalletAdded logs a new custom bank/wallet option.
func (l *Logger) BankWalletAdded(ctx context.Context, r *http.Request, userID, householdID primitive.ObjectID, name string) {
	l.Log(ctx, models.AuditEvent{
		Category:  models.AuditCategoryHousehold,
		EventType: "bank_wallet_added",
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
		Details: map[string]string{
			"household_id": householdID.Hex(),
			"name":         name,
		},
	})
}
