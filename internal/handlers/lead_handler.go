package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"
)

const maxUploadBytes = 20 << 20 // 20 MB

type LeadHandler struct {
	Leads    *services.LeadService
	Exporter *services.ExportService
	Importer *services.ImportService
}

func NewLeadHandler(leads *services.LeadService, exporter *services.ExportService,
	importer *services.ImportService) *LeadHandler {
	return &LeadHandler{Leads: leads, Exporter: exporter, Importer: importer}
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.Leads.Create(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lead id")
		return
	}

	lead, err := h.Leads.Get(r.Context(), claims, id)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// List returns one scoped page of leads. Filters: status (comma
// separated), behaviour, project, search.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	var filter models.LeadFilter
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status, ok := models.NormalizeStatus(s)
			if !ok {
				utils.Error(w, http.StatusBadRequest, "Unknown status "+s)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.Behaviour = q.Get("behaviour")
	filter.Project = q.Get("project")
	filter.Search = q.Get("search")

	page := utils.ParsePage(r)
	leads, total, err := h.Leads.List(r.Context(), claims, filter, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(leads, total, page))
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lead id")
		return
	}

	var req models.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.Leads.Update(r.Context(), claims, id, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// SetStatus changes only the lead status
func (h *LeadHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lead id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.Leads.Update(r.Context(), claims, id, &models.UpdateLeadRequest{Status: &body.Status})
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// BulkStatus moves a selection of leads to one status
func (h *LeadHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.Leads.BulkSetStatus(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// BulkAssign reassigns a selection of leads to one user
func (h *LeadHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.BulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.Leads.BulkAssign(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lead id")
		return
	}

	if err := h.Leads.Delete(r.Context(), claims, id); err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Export streams the scoped lead book as CSV or XLSX. Headers go out
// before the first row; failures after that can only truncate the stream.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	opts := services.ExportOptions{
		Format:    q.Get("format"),
		DateField: q.Get("when"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		TZ:        q.Get("tz"),
	}
	if raw := q.Get("status"); raw != "" {
		opts.Statuses = strings.Split(raw, ",")
	}

	job, err := h.Exporter.Prepare(r.Context(), claims, opts)
	if err != nil {
		fail(w, err)
		return
	}

	w.Header().Set("Content-Type", job.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.Filename+`"`)

	if err := job.Run(r.Context(), claims, w); err != nil {
		// Headers already sent, the stream just ends short
		log.Printf("[Export] stream aborted: %v", err)
	}
}

// Upload ingests a CSV or XLSX file of leads
func (h *LeadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.Importer.Import(r.Context(), claims, header.Filename, file)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
