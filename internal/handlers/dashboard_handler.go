package handlers

import (
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// Summary returns the role-scoped dashboard for ?range=&startDate=&endDate=&tz=
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	summary, err := h.Dashboard.Summarize(r.Context(), claims,
		q.Get("range"), q.Get("tz"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
