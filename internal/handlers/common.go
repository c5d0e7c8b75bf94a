package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.agent.GetStatus()
	checks := map[string]bool{
		"agent":    status.Ready,
		"postgres": h.pg != nil && h.pg.Ping(ctx) == nil,
		"redis":    h.redis != nil && h.redis.Ping(ctx).Err() == nil,
	}
	if h.ch != nil {
		checks["clickhouse"] = h.ch.Ping(ctx) == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	queueDepth := 0
	if h.queue != nil {
		queueDepth = h.queue.QueueDepth()
	}

	code := http.StatusOK
	if !allHealthy {
		code = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, code, map[string]interface{}{
		"ready":      allHealthy,
		"state":      status.State,
		"checks":     checks,
		"queueDepth": queueDepth,
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// agentError writes err using the status code for its kind.
func (h *Handler) agentError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)

	var status int
	switch kind {
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindAgentNotReady:
		w.Header().Set("Retry-After", "5")
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusBadGateway
	}

	h.jsonResponse(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

// decodeJSON reads a size-limited JSON body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return models.Validationf("request body exceeds %d bytes", MaxBodySize)
		}
		return models.Validationf("invalid JSON body: %v", err)
	}
	return nil
}
