package handlers

import (
	"encoding/json"
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"
)

type GoalHandler struct {
	Goals *services.GoalService
}

func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{Goals: goals}
}

// Upsert sets or replaces a user's weekly target
func (h *GoalHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.UpsertGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := h.Goals.Upsert(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, goal)
}

// List returns the goals visible to the caller
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	goals, err := h.Goals.List(r.Context(), claims)
	if err != nil {
		fail(w, err)
		return
	}
	if goals == nil {
		goals = []*models.Goal{}
	}
	utils.JSON(w, http.StatusOK, goals)
}

// Mine returns the caller's own active goal
func (h *GoalHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	goal, err := h.Goals.ActiveFor(r.Context(), claims, claims.UserID)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, goal)
}
