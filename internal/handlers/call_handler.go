package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"
)

type CallHandler struct {
	Calls *services.CallService
}

func NewCallHandler(calls *services.CallService) *CallHandler {
	return &CallHandler{Calls: calls}
}

// Log records one call attempt
func (h *CallHandler) Log(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.LogCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	callLog, err := h.Calls.Log(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, callLog)
}

// List returns one scoped page of call logs. Filters: lead_id, result.
func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	var filter models.CallFilter
	if raw := q.Get("lead_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid lead_id")
			return
		}
		filter.LeadID = &id
	}
	filter.Result = q.Get("result")

	page := utils.ParsePage(r)
	calls, total, err := h.Calls.List(r.Context(), claims, filter, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if calls == nil {
		calls = []*models.CallLog{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(calls, total, page))
}
