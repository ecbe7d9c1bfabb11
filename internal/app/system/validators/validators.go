// Package validators ensures collections exist and, where the deployment
// supports collMod, attaches JSON-Schema validators.
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("households", householdsSchema())
	ensure("invite_codes", inviteCodesSchema())
	ensure("memberships", membershipsSchema())
	ensure("household_settings", settingsSchema())
	ensure("transactions", transactionsSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("audit_events", nil)
	ensure("password_resets", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "auth_method"},
			"properties": bson.M{
				"email":        bson.M{"bsonType": "string", "minLength": 3, "pattern": ".*@.*"},
				"display_name": bson.M{"bsonType": "string"},
				"auth_method":  bson.M{"enum": bson.A{"password", "google"}},
				"household_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func householdsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"created_by", "invite_code"},
			"properties": bson.M{
				"created_by":  bson.M{"bsonType": "objectId"},
				"invite_code": bson.M{"bsonType": "string", "minLength": 3},
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func inviteCodesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"household_id"},
			"properties": bson.M{
				"household_id": bson.M{"bsonType": "objectId"},
				"created_by":   bson.M{"bsonType": "objectId"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func membershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"household_id", "user_id"},
			"properties": bson.M{
				"household_id": bson.M{"bsonType": "objectId"},
				"user_id":      bson.M{"bsonType": "objectId"},
				"display_name": bson.M{"bsonType": "string"},
				"joined_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func settingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"household_id"},
			"properties": bson.M{
				"household_id": bson.M{"bsonType": "objectId"},
				"bank_wallets": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func transactionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"household_id", "date", "type", "amount"},
			"properties": bson.M{
				"household_id": bson.M{"bsonType": "objectId"},
				"date":         bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
				"month":        bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}$"},
				"type":         bson.M{"enum": bson.A{"income", "expense"}},
				"amount":       bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"created_by":   bson.M{"bsonType": "objectId"},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}
