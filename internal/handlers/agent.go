package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// ProcessCommand runs one agent command
// @Summary Process Agent Command
// @Description Executes add_player, remove_player, set_lineup, update_preferences, get_recommendations, analyze_player, get_memory or refresh_player
// @Tags Agent
// @Accept json
// @Produce json
// @Param command body models.Command true "Command"
// @Success 200 {object} models.CommandResult
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 502 {object} map[string]string "Data unavailable"
// @Failure 503 {object} map[string]string "Agent not ready"
// @Router /agent/commands [post]
func (h *Handler) ProcessCommand(w http.ResponseWriter, r *http.Request) {
	var cmd models.Command
	if err := decodeJSON(w, r, &cmd); err != nil {
		h.agentError(w, err)
		return
	}

	res, err := h.agent.ProcessCommand(r.Context(), cmd)
	if err != nil {
		if models.KindOf(err) == models.KindDataUnavailable {
			h.logger.Errorw("Command failed", "type", cmd.Type, "user", cmd.UserID, "error", err)
		}
		h.agentError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, res)
}

// GetAgentStatus reports agent readiness and counters
// @Summary Get Agent Status
// @Tags Agent
// @Produce json
// @Success 200 {object} models.AgentStatus
// @Router /agent/status [get]
func (h *Handler) GetAgentStatus(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.agent.GetStatus())
}

// GetUserRecommendations returns the latest stored recommendations for a user
// @Summary Get User Recommendations
// @Tags Recommendations
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.TeamRecommendations
// @Failure 404 {object} map[string]string "Not Found"
// @Router /users/{userId}/recommendations [get]
func (h *Handler) GetUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		h.errorResponse(w, http.StatusBadRequest, "User ID is required")
		return
	}

	rec, err := h.recs.LoadUserRecommendations(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No recommendations generated yet")
			return
		}
		h.logger.Errorw("Failed to load recommendations", "error", err, "user", userID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}

	h.jsonResponse(w, http.StatusOK, rec)
}
