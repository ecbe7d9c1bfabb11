// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS). AppConfig is everything specific to the household ledger: database
// coordinates, session signing, OAuth credentials, SMTP, audit policy, and
// the background maintenance cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionDomain string // cookie domain (blank means current host)

	// Base URL used in invite links and password-reset emails.
	BaseURL string

	// Google OAuth configuration. Both empty disables the Google sign-in
	// routes; the password flow always works.
	GoogleClientID     string
	GoogleClientSecret string

	// Email/SMTP configuration. An empty host switches the mailer to
	// log-only mode for local development.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	// Audit logging per category: "all" (db+log), "db", "log", or "off".
	AuditLogAuth      string
	AuditLogHousehold string

	// AuditRetention bounds how long audit events are kept.
	AuditRetention time.Duration

	// Login rate limiting: attempts allowed per client key per window.
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// ReconcileInterval drives the invite-mapping repair worker.
	ReconcileInterval time.Duration
}
