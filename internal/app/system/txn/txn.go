// Package txn runs multi-document work inside a MongoDB transaction when the
// deployment supports one, and degrades to plain sequential execution on
// standalone servers (local dev, some hosted tiers). Invite-code rotation and
// the bank/wallet read-modify-write depend on the transactional path for
// their atomicity guarantee; the fallback trades that away and logs it.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone deployment, old wire version).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 20 IllegalOperation, 51 fcv/feature, 263 OperationNotSupportedInTransaction
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "illegal operation"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}

// WithTransaction executes fn inside a session transaction. The context
// handed to fn carries the session, so any collection operation using it
// joins the transaction. If the server does not support transactions, fn is
// re-run once outside a session and a warning is logged; callers that cannot
// tolerate the non-atomic fallback should check IsNotSupported themselves.
func WithTransaction(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithoutTxn(ctx, log, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runWithoutTxn(ctx, log, fn)
	}
	return err
}

func runWithoutTxn(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Warn("transactions unsupported by deployment; applying steps non-atomically")
	}
	return fn(ctx)
}
