package txstore

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/domain/models"
)

// pollInterval drives the fallback loop on deployments without change
// streams (standalone servers).
const pollInterval = 3 * time.Second

// Subscription delivers full snapshots of a household's transactions. The
// first snapshot arrives immediately; later ones follow every change. Slow
// consumers only ever see the latest state: stale snapshots are dropped, not
// queued.
type Subscription struct {
	C      <-chan []models.Transaction
	cancel context.CancelFunc
}

// Close stops the feed and releases the underlying stream or poll loop.
func (sub *Subscription) Close() {
	sub.cancel()
}

// isStreamUnsupported detects the standalone-server refusal of $changeStream.
func isStreamUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 40573 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "$changestream") && strings.Contains(msg, "replica sets")
}

// Watch subscribes to the household's transaction feed. A change stream is
// preferred; when the deployment cannot provide one, the subscription
// degrades to polling at a fixed interval. Either way every delivery is a
// complete re-queried snapshot, so subscribers never reconcile deltas.
func (s *Store) Watch(ctx context.Context, householdID primitive.ObjectID) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []models.Transaction, 1)
	sub := &Subscription{C: ch, cancel: cancel}

	initial, err := s.List(ctx, householdID)
	if err != nil {
		cancel()
		return nil, err
	}
	ch <- initial

	stream, err := s.c.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		if !isStreamUnsupported(err) {
			cancel()
			return nil, err
		}
		s.log.Warn("change streams unavailable; falling back to polling",
			zap.String("household_id", householdID.Hex()))
		go s.pollLoop(ctx, householdID, ch, initial)
		return sub, nil
	}

	go s.streamLoop(ctx, stream, householdID, ch)
	return sub, nil
}

func (s *Store) streamLoop(ctx context.Context, stream *mongo.ChangeStream, householdID primitive.ObjectID, ch chan []models.Transaction) {
	defer close(ch)
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		// Deletes carry no full document, so a per-household pipeline match
		// would miss them. Any event triggers a filtered requery instead.
		var ev bson.M
		if err := stream.Decode(&ev); err != nil {
			continue
		}

		snapshot, err := s.List(ctx, householdID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("snapshot requery failed",
				zap.String("household_id", householdID.Hex()),
				zap.Error(err))
			continue
		}
		deliver(ch, snapshot)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.log.Warn("change stream ended", zap.Error(err))
	}
}

func (s *Store) pollLoop(ctx context.Context, householdID primitive.ObjectID, ch chan []models.Transaction, last []models.Transaction) {
	defer close(ch)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshot, err := s.List(ctx, householdID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if reflect.DeepEqual(snapshot, last) {
			continue
		}
		last = snapshot
		deliver(ch, snapshot)
	}
}

// deliver replaces any undrained snapshot with the newer one. The channel
// must be bidirectional here so the stale value can be pulled back out;
// subscribers still only see the receive side via Subscription.C.
func deliver(ch chan []models.Transaction, snapshot []models.Transaction) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
