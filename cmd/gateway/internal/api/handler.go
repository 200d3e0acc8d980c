package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/repository"
)

// Handler serves the polling endpoints backed by the shared store.
type Handler struct {
	store  repository.PriceStore
	logger *zap.Logger
}

func NewHandler(store repository.PriceStore, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Prices returns the full snapshot hash as one JSON object keyed by
// trading-pair symbol. Polling clients use this as the last known state when
// they are not holding a websocket open.
func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.Snapshots(r.Context())
	if err != nil {
		h.logger.Error("Snapshot read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snaps); err != nil {
		h.logger.Error("Snapshot encode failed", zap.Error(err))
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
