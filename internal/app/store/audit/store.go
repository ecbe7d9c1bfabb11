// Package audit persists audit events in the audit_events collection.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/exodologio/exodologio/internal/domain/models"
)

// Store provides audit event persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a Store backed by db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts an audit event. CreatedAt is stamped here so callers never
// have to.
func (s *Store) Log(ctx context.Context, ev models.AuditEvent) error {
	ev.ID = primitive.NewObjectID()
	ev.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, ev)
	return err
}

// ListByUser returns the newest events for a user, up to limit.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.AuditEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AuditEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes events created before cutoff and returns how many
// were deleted. Used by the retention worker.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
