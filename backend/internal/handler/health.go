package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/threads/shared/logger"
)

const readyTimeout = 2 * time.Second

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready returns 503 while the database does not answer a ping.
// Concurrent probes share one ping, which runs detached from any single caller's context.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	_, err, _ := h.ready.Do("ping", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
		defer cancel()
		return nil, h.health.Ping(ctx)
	})
	if err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
