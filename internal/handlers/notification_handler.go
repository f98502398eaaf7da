package handlers

import (
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/pkg/utils"
)

type NotificationHandler struct {
	Repo *repositories.NotificationRepository
}

func NewNotificationHandler(repo *repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

// List returns the caller's notifications, ?unread=true for unread only
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	page := utils.ParsePage(r)
	items, total, err := h.Repo.ListForUser(r.Context(), claims.UserID, unreadOnly, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if items == nil {
		items = []*models.Notification{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(items, total, page))
}

// MarkRead flags one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.Repo.MarkRead(r.Context(), id, claims.UserID); err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead flags every notification of the caller as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := h.Repo.MarkAllRead(r.Context(), claims.UserID); err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}
