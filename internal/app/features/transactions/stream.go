package transactions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/exodologio/exodologio/internal/app/features/errors"
	"github.com/exodologio/exodologio/internal/app/system/errs"
)

// keepAliveInterval spaces out SSE comment lines so intermediaries do not
// drop an idle connection.
const keepAliveInterval = 25 * time.Second

// Stream handles GET /api/transactions/stream: a server-sent-events feed
// delivering the household's full transaction list on connect and after every
// change. Clients replace their local state with each snapshot.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		apierrors.WriteError(w, h.Log, errs.New(errs.ValidationFailed, "streaming is not supported on this connection"))
		return
	}

	ctx := r.Context()
	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	sub, err := h.Txs.Watch(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case snapshot, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.Log.Error("marshal transaction snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: transactions\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
