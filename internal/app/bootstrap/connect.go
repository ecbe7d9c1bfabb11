// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/store/audit"
	householdstore "github.com/exodologio/exodologio/internal/app/store/households"
	"github.com/exodologio/exodologio/internal/app/store/oauthstate"
	resetstore "github.com/exodologio/exodologio/internal/app/store/resets"
	settingsstore "github.com/exodologio/exodologio/internal/app/store/settings"
	txstore "github.com/exodologio/exodologio/internal/app/store/transactions"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/auditlog"
	"github.com/exodologio/exodologio/internal/app/system/mailer"
	"github.com/exodologio/exodologio/internal/app/system/ratelimit"
)

// ConnectDB establishes the MongoDB connection and builds the store layer.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	users := userstore.New(db)
	settings := settingsstore.New(db)
	auditEvents := audit.New(db)
	auditLog := auditlog.New(auditEvents, logger, auditlog.Config{
		Auth:      appCfg.AuditLogAuth,
		Household: appCfg.AuditLogHousehold,
	})

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,

		Users:       users,
		Households:  householdstore.New(db, client, users, settings, logger),
		Settings:    settings,
		Txs:         txstore.New(db, logger),
		Resets:      resetstore.New(db),
		AuditEvents: auditEvents,
		OAuthStates: oauthstate.New(db),

		AuditLog: auditLog,
		Mailer: mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
		}, logger),
		LoginLimiter: ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow),
	}
	return deps, nil
}
