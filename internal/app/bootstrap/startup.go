// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/system/auth"
	"github.com/exodologio/exodologio/internal/app/system/workers"
)

// Background workers started here and stopped in Shutdown.
var (
	inviteRepairWorker *workers.InviteRepair
	retentionWorker    *workers.Retention
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		return err
	}

	inviteRepairWorker = workers.NewInviteRepair(deps.Households, logger, appCfg.ReconcileInterval)
	inviteRepairWorker.Start()

	retentionWorker = workers.NewRetention(deps.AuditEvents, deps.OAuthStates, logger, appCfg.AuditRetention)
	retentionWorker.Start()

	return nil
}
