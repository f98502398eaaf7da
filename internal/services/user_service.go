package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type UserService struct {
	Users      *repositories.UserRepository
	Leads      *repositories.LeadRepository
	Goals      *repositories.GoalRepository
	Activity   *repositories.ActivityLogRepository
	JWTManager *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, leads *repositories.LeadRepository,
	goals *repositories.GoalRepository, activity *repositories.ActivityLogRepository,
	jwtManager *auth.JWTManager) *UserService {
	return &UserService{Users: users, Leads: leads, Goals: goals, Activity: activity, JWTManager: jwtManager}
}

// Login verifies credentials and issues a token. A disabled account
// fails the same way as a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, validationf("email and password are required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, forbiddenf("invalid credentials")
		}
		return nil, err
	}
	if !user.Active || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, forbiddenf("invalid credentials")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[User] last_login update failed for %d: %v", user.ID, err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Users.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundf("user %d", id)
	}
	if err != nil {
		return nil, err
	}
	s.attachGoals(ctx, []*models.User{user})
	return user, nil
}

func (s *UserService) List(ctx context.Context, role string, activeOnly bool) ([]*models.User, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, validationf("unknown role %q", role)
	}
	users, err := s.Users.List(ctx, role, activeOnly)
	if err != nil {
		return nil, err
	}
	s.attachGoals(ctx, users)
	return users, nil
}

// attachGoals decorates users with their current weekly goal. A failed
// lookup leaves the goals off rather than failing the read.
func (s *UserService) attachGoals(ctx context.Context, users []*models.User) {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		if u.Role != models.RoleAdmin {
			ids = append(ids, u.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	goals, err := s.Goals.ListForUsers(ctx, ids)
	if err != nil {
		log.Printf("[User] goal lookup failed: %v", err)
		return
	}

	now := timeutil.Now()
	byUser := make(map[int64]*models.Goal, len(goals))
	for _, g := range goals {
		if !g.StartDate.After(now) && !g.EndDate.Before(now) {
			byUser[g.UserID] = g
		}
	}
	for _, u := range users {
		u.ActiveGoal = byUser[u.ID]
	}
}

// Team returns the team view for the caller: a leader sees self plus
// their telecallers, a telecaller sees their leader and peers, an admin
// inspects any team via leaderID or lists every telecaller with zero.
func (s *UserService) Team(ctx context.Context, actor *auth.Claims, leaderID int64) (*models.Team, error) {
	switch {
	case actor.Role == models.RoleAdmin && leaderID == 0:
		members, err := s.Users.List(ctx, models.RoleTelecaller, false)
		if err != nil {
			return nil, err
		}
		if members == nil {
			members = []*models.User{}
		}
		s.attachGoals(ctx, members)
		return &models.Team{Members: members}, nil

	case actor.Role == models.RoleAdmin:
		// inspect the requested leader's team

	case actor.Role == models.RoleLeader:
		leaderID = actor.UserID

	default: // telecaller
		if actor.LeaderID == nil {
			return &models.Team{Members: []*models.User{}}, nil
		}
		leaderID = *actor.LeaderID
	}

	leader, err := s.Users.Get(ctx, leaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("leader %d", leaderID)
		}
		return nil, err
	}
	if leader.Role != models.RoleLeader {
		return nil, notFoundf("leader %d", leaderID)
	}

	members, err := s.Users.ListByLeader(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.User{}
	}
	s.attachGoals(ctx, append([]*models.User{leader}, members...))
	return &models.Team{Leader: leader, Members: members}, nil
}

// Create adds a user. Leaders may only create telecallers on their own
// team; telecallers may not create anyone.
func (s *UserService) Create(ctx context.Context, actor *auth.Claims, req *models.CreateUserRequest) (*models.User, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot create users")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		return nil, validationf("first_name, email and password are required")
	}
	if !models.ValidRole(req.Role) {
		return nil, validationf("unknown role %q", req.Role)
	}

	leaderID := req.LeaderID
	switch req.Role {
	case models.RoleTelecaller:
		if actor.Role == models.RoleLeader {
			// Leaders always create onto their own team
			id := actor.UserID
			leaderID = &id
		}
		if leaderID == nil {
			return nil, validationf("leader_id is required for telecallers")
		}
		leader, err := s.Users.Get(ctx, *leaderID)
		if err != nil || leader.Role != models.RoleLeader || !leader.Active {
			return nil, validationf("leader_id does not reference an active leader")
		}
	default:
		if actor.Role != models.RoleAdmin {
			return nil, forbiddenf("only admins can create %s accounts", req.Role)
		}
		leaderID = nil
	}

	if n, err := s.Users.CountByEmail(ctx, req.Email, 0); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, conflictf("email %s already in use", req.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		LeaderID:     leaderID,
		Active:       true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, actor.UserID, models.ActionUserCreated, user.ID, map[string]string{"email": user.Email, "role": user.Role})
	return user, nil
}

// Update modifies a user (admin only). Changing a telecaller's leader
// re-syncs the denormalized leader_id on their leads.
func (s *UserService) Update(ctx context.Context, actor *auth.Claims, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, forbiddenf("only admins can update users")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" {
			return nil, validationf("email cannot be empty")
		}
		if n, err := s.Users.CountByEmail(ctx, email, id); err != nil {
			return nil, err
		} else if n > 0 {
			return nil, conflictf("email %s already in use", email)
		}
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, validationf("unknown role %q", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	leaderChanged := false
	if req.LeaderID != nil {
		leader, err := s.Users.Get(ctx, *req.LeaderID)
		if err != nil || leader.Role != models.RoleLeader || !leader.Active {
			return nil, validationf("leader_id does not reference an active leader")
		}
		user.LeaderID = req.LeaderID
		leaderChanged = true
	}
	if user.Role != models.RoleTelecaller {
		user.LeaderID = nil
	}

	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}

	if leaderChanged && user.Role == models.RoleTelecaller {
		if err := s.Leads.ResyncLeader(ctx, user.ID, user.LeaderID); err != nil {
			log.Printf("[User] lead leader resync failed for %d: %v", user.ID, err)
		}
	}

	s.audit(ctx, actor.UserID, models.ActionUserUpdated, user.ID, nil)
	return user, nil
}

// Delete removes a user. Blocked for self-delete and the last admin.
func (s *UserService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	if actor.Role != models.RoleAdmin {
		return forbiddenf("only admins can delete users")
	}
	if actor.UserID == id {
		return validationf("cannot delete your own account")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		n, err := s.Users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return validationf("cannot delete the last admin")
		}
	}

	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor.UserID, models.ActionUserDeleted, id, map[string]string{"email": user.Email})
	return nil
}

func (s *UserService) audit(ctx context.Context, actorID int64, action string, targetID int64, meta interface{}) {
	if err := s.Activity.Record(ctx, actorID, action, &targetID, meta); err != nil {
		log.Printf("[Audit] %s write failed: %v", action, err)
	}
}
