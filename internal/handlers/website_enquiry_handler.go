package handlers

import (
	"encoding/json"
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/pkg/utils"
)

type WebsiteEnquiryHandler struct {
	Service *services.EnquiryService
	Repo    *repositories.WebsiteEnquiryRepository
}

func NewWebsiteEnquiryHandler(service *services.EnquiryService, repo *repositories.WebsiteEnquiryRepository) *WebsiteEnquiryHandler {
	return &WebsiteEnquiryHandler{Service: service, Repo: repo}
}

// Submit is the public endpoint behind the x-site-token middleware
func (h *WebsiteEnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	enquiry, err := h.Service.Submit(r.Context(), &req)
	if err != nil {
		fail(w, err)
		return
	}
	// Honeypot hits get the same success shape as real submissions
	if enquiry == nil {
		utils.JSON(w, http.StatusCreated, map[string]string{"status": "received"})
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"status": "received", "id": enquiry.ID})
}

// List returns enquiries for staff, ?status=new|done
func (h *WebsiteEnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	page := utils.ParsePage(r)
	items, total, err := h.Repo.List(r.Context(), status, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if items == nil {
		items = []*models.WebsiteEnquiry{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(items, total, page))
}

// SetStatus marks an enquiry handled
func (h *WebsiteEnquiryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid enquiry id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	enquiry, err := h.Service.SetStatus(r.Context(), claims, id, body.Status)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, enquiry)
}
