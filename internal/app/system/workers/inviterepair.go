// Package workers holds the background maintenance loops: invite-mapping
// repair and data retention.
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	householdstore "github.com/exodologio/exodologio/internal/app/store/households"
	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// InviteRepair periodically sweeps households and restores any broken
// invite-code mapping. Household bootstrap inserts the mapping last and does
// not roll back, so a crash mid-bootstrap (or a lost code race) leaves a
// household that nobody can join until this worker gives it a fresh code.
type InviteRepair struct {
	households *householdstore.Store
	log        *zap.Logger
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewInviteRepair creates the repair worker.
func NewInviteRepair(households *householdstore.Store, logger *zap.Logger, interval time.Duration) *InviteRepair {
	return &InviteRepair{
		households: households,
		log:        logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *InviteRepair) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invite repair worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *InviteRepair) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("invite repair worker stopped")
}

func (w *InviteRepair) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one full pass. Exported so tests and admin tooling can trigger
// it directly.
func (w *InviteRepair) Sweep(ctx context.Context) {
	households, err := w.households.ListAll(ctx)
	if err != nil {
		w.log.Error("invite repair: list households failed", zap.Error(err))
		return
	}

	repaired := 0
	for _, h := range households {
		if w.mappingIntact(ctx, h) {
			continue
		}
		code, err := w.households.RepairInvite(ctx, h)
		if err != nil {
			w.log.Error("invite repair failed",
				zap.String("household_id", h.ID.Hex()),
				zap.Error(err))
			continue
		}
		w.log.Info("restored invite mapping",
			zap.String("household_id", h.ID.Hex()),
			zap.String("code", code))
		repaired++
	}
	if repaired > 0 {
		w.log.Info("invite repair sweep finished", zap.Int("repaired", repaired))
	}
}

// mappingIntact reports whether the household's recorded code resolves back
// to it.
func (w *InviteRepair) mappingIntact(ctx context.Context, h models.Household) bool {
	if h.InviteCode == "" {
		return false
	}
	ownerID, err := w.households.LookupInvite(ctx, h.InviteCode)
	if err != nil {
		if errs.KindOf(err) == errs.NotFound {
			return false
		}
		// Transient lookup failure: leave the household alone this sweep.
		w.log.Warn("invite repair: lookup failed",
			zap.String("household_id", h.ID.Hex()),
			zap.Error(err))
		return true
	}
	return ownerID == h.ID
}
