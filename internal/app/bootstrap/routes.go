// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authgooglefeature "github.com/exodologio/exodologio/internal/app/features/authgoogle"
	authnfeature "github.com/exodologio/exodologio/internal/app/features/authn"
	errorsfeature "github.com/exodologio/exodologio/internal/app/features/errors"
	healthfeature "github.com/exodologio/exodologio/internal/app/features/health"
	householdfeature "github.com/exodologio/exodologio/internal/app/features/household"
	transactionsfeature "github.com/exodologio/exodologio/internal/app/features/transactions"
	"github.com/exodologio/exodologio/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The API is JSON throughout; the router's
// fallbacks answer in the same shape.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context when a
	// valid cookie arrives, making auth.CurrentUser(r) work everywhere.
	r.Use(auth.LoadSessionUser)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Password authentication and account lifecycle.
	authnHandler := authnfeature.NewHandler(
		deps.Users, deps.Resets, deps.AuditLog, deps.Mailer,
		deps.LoginLimiter, appCfg.BaseURL, logger)
	r.Mount("/api/auth", authnfeature.Routes(authnHandler))

	// Google OAuth sign-in.
	googleHandler := authgooglefeature.NewHandler(
		deps.Users, deps.OAuthStates, deps.AuditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/api/auth/google", authgooglefeature.Routes(googleHandler))

	// Household membership, invites, and settings.
	householdHandler := householdfeature.NewHandler(
		deps.Users, deps.Households, deps.Settings, deps.AuditLog,
		appCfg.BaseURL, logger)
	r.Mount("/api/household", householdfeature.Routes(householdHandler))

	// Transactions: CRUD, summaries, live feed, exports.
	txHandler := transactionsfeature.NewHandler(deps.Users, deps.Txs, logger)
	r.Mount("/api/transactions", transactionsfeature.Routes(txHandler))

	return r, nil
}
