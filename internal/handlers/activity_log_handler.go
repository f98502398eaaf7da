package handlers

import (
	"net/http"
	"strconv"

	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/pkg/utils"
)

type ActivityLogHandler struct {
	Repo *repositories.ActivityLogRepository
}

func NewActivityLogHandler(repo *repositories.ActivityLogRepository) *ActivityLogHandler {
	return &ActivityLogHandler{Repo: repo}
}

// List returns the audit trail, admin only. Filters: actor_id, action.
func (h *ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var actorID *int64
	if raw := q.Get("actor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid actor_id")
			return
		}
		actorID = &id
	}

	page := utils.ParsePage(r)
	logs, total, err := h.Repo.List(r.Context(), actorID, q.Get("action"), page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if logs == nil {
		logs = []*models.ActivityLog{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(logs, total, page))
}
