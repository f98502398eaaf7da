package handlers

import (
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/services"
	"telecrm-backend/internal/timeutil"
)

type ReportHandler struct {
	Reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// TeamPDF generates the team performance report for ?range=&tz=,
// or an explicit window via ?range=custom&startDate=&endDate=
func (h *ReportHandler) TeamPDF(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	data, err := h.Reports.TeamReport(r.Context(), claims,
		q.Get("range"), q.Get("tz"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		fail(w, err)
		return
	}

	pdf, err := h.Reports.GenerateTeamPDF(data)
	if err != nil {
		fail(w, err)
		return
	}

	filename := "team_performance_" + timeutil.Now().Format(timeutil.StampLayout) + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(pdf)
}
