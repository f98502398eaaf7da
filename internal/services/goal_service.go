package services

import (
	"context"
	"errors"
	"log"
	"time"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type GoalService struct {
	Goals    *repositories.GoalRepository
	Calls    *repositories.CallLogRepository
	Activity *repositories.ActivityLogRepository
	Scopes   *ScopeService
}

func NewGoalService(goals *repositories.GoalRepository, calls *repositories.CallLogRepository,
	activity *repositories.ActivityLogRepository, scopes *ScopeService) *GoalService {
	return &GoalService{Goals: goals, Calls: calls, Activity: activity, Scopes: scopes}
}

// Upsert sets a user's weekly target. The window defaults to the
// current ISO week. Achieved progress survives re-upserts. Leaders may
// only set goals for their own telecallers.
func (s *GoalService) Upsert(ctx context.Context, actor *auth.Claims, req *models.UpsertGoalRequest) (*models.Goal, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot set goals")
	}
	if req.Target <= 0 {
		return nil, validationf("target must be positive")
	}

	if actor.Role == models.RoleLeader {
		scope, err := s.Scopes.Resolve(ctx, actor)
		if err != nil {
			return nil, err
		}
		if !scope.Covers(req.UserID) {
			return nil, forbiddenf("user %d is not on your team", req.UserID)
		}
	}

	var start, end time.Time
	if req.StartDate != "" || req.EndDate != "" {
		window, err := timeutil.ResolveWindow("custom", "", req.StartDate, req.EndDate)
		if err != nil {
			return nil, validationf("bad goal window: %v", err)
		}
		start, end = window.Start, window.End
	} else {
		start = timeutil.WeekStart(timeutil.Now(), timeutil.IST)
		end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	}

	goal := &models.Goal{
		UserID:    req.UserID,
		Target:    req.Target,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.Goals.Upsert(ctx, goal); err != nil {
		return nil, err
	}

	if err := s.Activity.Record(ctx, actor.UserID, models.ActionGoalUpserted, &goal.ID,
		map[string]interface{}{"user_id": req.UserID, "target": req.Target}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionGoalUpserted, err)
	}
	return goal, nil
}

// List returns the goals visible to the caller: everyone's for admins,
// the team's for leaders, their own for telecallers.
func (s *GoalService) List(ctx context.Context, actor *auth.Claims) ([]*models.Goal, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted {
		return s.Goals.ListAll(ctx)
	}
	if scope.Empty {
		return nil, nil
	}
	return s.Goals.ListForUsers(ctx, scope.TelecallerIDs)
}

// ActiveFor returns the goal active now for a user, scope-checked
func (s *GoalService) ActiveFor(ctx context.Context, actor *auth.Claims, userID int64) (*models.Goal, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(userID) {
		return nil, forbiddenf("user %d is outside your scope", userID)
	}

	goal, err := s.Goals.ActiveFor(ctx, userID, timeutil.Now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("no active goal for user %d", userID)
		}
		return nil, err
	}

	// The counter can drift behind the call log (e.g. calls logged
	// before the goal existed), so reads report whichever is higher.
	calls, err := s.Calls.CountInWindow(ctx, userID, goal.StartDate, goal.EndDate)
	if err != nil {
		return nil, err
	}
	if calls > goal.Achieved {
		goal.Achieved = calls
	}
	return goal, nil
}
