package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/services"
	"telecrm-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Users        *services.UserService
	CallSvc      *services.CallService
	Goals        *services.GoalService
	LeadSvc      *services.LeadService
	DashboardSvc *services.DashboardService
}

func NewUserHandler(users *services.UserService, calls *services.CallService,
	goals *services.GoalService, leads *services.LeadService,
	dashboard *services.DashboardService) *UserHandler {
	return &UserHandler{Users: users, CallSvc: calls, Goals: goals, LeadSvc: leads, DashboardSvc: dashboard}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Users.Create(r.Context(), claims, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.Users.Get(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// List returns users filtered by ?role= and ?active=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	activeOnly := r.URL.Query().Get("active") != "false"

	users, err := h.Users.List(r.Context(), role, activeOnly)
	if err != nil {
		fail(w, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Users.Update(r.Context(), claims, id, &req)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.Users.Delete(r.Context(), claims, id); err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Team returns the caller's team view. Admins may inspect any team
// with ?leaderId=, or list every telecaller without it.
func (h *UserHandler) Team(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var leaderID int64
	if raw := r.URL.Query().Get("leaderId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid leaderId")
			return
		}
		leaderID = id
	}

	team, err := h.Users.Team(r.Context(), claims, leaderID)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, team)
}

// Leads returns one telecaller's leads, for the drill-down view
func (h *UserHandler) Leads(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	page := utils.ParsePage(r)
	leads, total, err := h.LeadSvc.ListForTelecaller(r.Context(), claims, id, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(leads, total, page))
}

// Calls returns one telecaller's call history, scope-checked
func (h *UserHandler) Calls(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	page := utils.ParsePage(r)
	calls, total, err := h.CallSvc.ListForTelecaller(r.Context(), claims, id, page.PageSize, page.Offset())
	if err != nil {
		fail(w, err)
		return
	}
	if calls == nil {
		calls = []*models.CallLog{}
	}
	utils.JSON(w, http.StatusOK, utils.NewPaginated(calls, total, page))
}

// Dashboard returns a telecaller's dashboard as their manager sees it
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	q := r.URL.Query()
	summary, err := h.DashboardSvc.SummarizeFor(r.Context(), claims, id,
		q.Get("range"), q.Get("tz"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// Goal returns one user's active weekly goal
func (h *UserHandler) Goal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	goal, err := h.Goals.ActiveFor(r.Context(), claims, id)
	if err != nil {
		fail(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, goal)
}
