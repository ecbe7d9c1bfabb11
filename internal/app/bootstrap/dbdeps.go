// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

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

// DBDeps bundles the Mongo connection and every store built on it, plus the
// cross-cutting services handlers need. Built once in ConnectDB and handed to
// the later lifecycle hooks.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Users       *userstore.Store
	Households  *householdstore.Store
	Settings    *settingsstore.Store
	Txs         *txstore.Store
	Resets      *resetstore.Store
	AuditEvents *audit.Store
	OAuthStates *oauthstate.Store

	AuditLog     *auditlog.Logger
	Mailer       *mailer.Mailer
	LoginLimiter *ratelimit.Limiter
}
