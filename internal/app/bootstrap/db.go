// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/system/indexes"
	"github.com/exodologio/exodologio/internal/app/system/validators"
)

// EnsureSchema reconciles collections, JSON-schema validators, and indexes.
// Every step is idempotent, so repeated startups converge to the same state.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return err
	}
	if err := deps.OAuthStates.EnsureIndexes(ctx); err != nil {
		return err
	}
	logger.Info("database schema ensured")
	return nil
}
