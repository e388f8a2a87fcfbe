package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	store  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a health handler. A nil store skips the ping.
func NewHealthHandler(store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// HandleHealth returns a simple health check response
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.PingContext(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
