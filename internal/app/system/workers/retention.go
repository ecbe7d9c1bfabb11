package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/store/audit"
	"github.com/exodologio/exodologio/internal/app/store/oauthstate"
)

// retentionInterval spaces out the cleanup passes. Retention is coarse, so a
// daily sweep is plenty.
const retentionInterval = 24 * time.Hour

// Retention prunes aged audit events and leftover OAuth state documents.
// OAuth states also carry a TTL index; the sweep covers deployments whose
// TTL monitor is disabled.
type Retention struct {
	auditEvents *audit.Store
	oauthStates *oauthstate.Store
	log         *zap.Logger
	keepFor     time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewRetention creates the retention worker. keepFor bounds audit history.
func NewRetention(auditEvents *audit.Store, oauthStates *oauthstate.Store, logger *zap.Logger, keepFor time.Duration) *Retention {
	return &Retention{
		auditEvents: auditEvents,
		oauthStates: oauthStates,
		log:         logger,
		keepFor:     keepFor,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *Retention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("retention worker started", zap.Duration("keep_for", w.keepFor))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Retention) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("retention worker stopped")
}

func (w *Retention) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one cleanup pass.
func (w *Retention) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.keepFor)
	if removed, err := w.auditEvents.DeleteOlderThan(ctx, cutoff); err != nil {
		w.log.Error("audit retention sweep failed", zap.Error(err))
	} else if removed > 0 {
		w.log.Info("pruned audit events", zap.Int64("removed", removed))
	}

	if removed, err := w.oauthStates.CleanupExpired(ctx); err != nil {
		w.log.Error("oauth state cleanup failed", zap.Error(err))
	} else if removed > 0 {
		w.log.Info("pruned expired oauth states", zap.Int64("removed", removed))
	}
}
