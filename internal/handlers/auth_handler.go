package handlers

import (
	"encoding/json"
	"net/http"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Me returns the authenticated user's own profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		fail(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
