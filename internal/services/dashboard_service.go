package services

import (
	"context"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/cache"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"golang.org/x/sync/errgroup"
)

const (
	leaderboardSize = 5
	recentSize      = 5
)

type DashboardService struct {
	Leads  *repositories.LeadRepository
	Calls  *repositories.CallLogRepository
	Goals  *repositories.GoalRepository
	Users  *repositories.UserRepository
	Scopes *ScopeService
}

func NewDashboardService(leads *repositories.LeadRepository, calls *repositories.CallLogRepository,
	goals *repositories.GoalRepository, users *repositories.UserRepository,
	scopes *ScopeService) *DashboardService {
	return &DashboardService{Leads: leads, Calls: calls, Goals: goals, Users: users, Scopes: scopes}
}

// Summarize computes the role-scoped dashboard for one window. The
// independent reads fan out concurrently; any single failure fails the
// whole summary, the caller never sees partial data.
func (s *DashboardService) Summarize(ctx context.Context, actor *auth.Claims, rangeName, tz, startDate, endDate string) (*models.DashboardSummary, error) {
	window, err := timeutil.ResolveWindow(rangeName, tz, startDate, endDate)
	if err != nil {
		return nil, validationf("%v", err)
	}

	cacheKey := cache.DashboardKey(actor.UserID, window.Range, startDate, endDate)
	var cached models.DashboardSummary
	if cache.GetJSON(cacheKey, &cached) {
		return &cached, nil
	}

	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	leadFilter := scope.LeadFilter()
	callFilter := scope.CallFilter()
	callFilter.CreatedGTE = &window.Start
	callFilter.CreatedLTE = &window.End

	summary := &models.DashboardSummary{
		Role: actor.Role,
		Period: models.Period{
			Range: window.Range,
			Start: window.Start.Format(timeutil.DateTimeLayout),
			End:   window.End.Format(timeutil.DateTimeLayout),
		},
	}

	var (
		statusCounts  map[string]int
		updatedCounts map[string]int
		created       int
		updated       int
		started       int
		resultCounts  map[string]int
		leaderboard   []models.LeaderboardRow
		teamSize      int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		statusCounts, err = s.Leads.StatusBreakdown(gctx, leadFilter)
		return err
	})
	g.Go(func() error {
		var err error
		created, updated, started, err = s.Leads.WindowCounts(gctx, leadFilter, window.Start, window.End)
		return err
	})
	g.Go(func() error {
		var err error
		updatedCounts, err = s.Leads.UpdatedBreakdown(gctx, leadFilter, window.Start, window.End)
		return err
	})
	g.Go(func() error {
		var err error
		resultCounts, err = s.Calls.ResultBreakdown(gctx, callFilter)
		return err
	})

	if actor.Role != models.RoleTelecaller {
		g.Go(func() error {
			var err error
			leaderboard, err = s.Calls.Leaderboard(gctx, callFilter, leaderboardSize)
			return err
		})
		g.Go(func() error {
			var err error
			teamSize, err = s.teamSize(gctx, actor, scope)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.LeadStats = buildLeadStats(statusCounts, updatedCounts, created, updated, started)
	summary.CallStats = buildCallStats(resultCounts)

	if actor.Role != models.RoleTelecaller {
		if leaderboard == nil {
			leaderboard = []models.LeaderboardRow{}
		}
		summary.TeamStats = &models.TeamStats{TeamSize: teamSize, Leaderboard: leaderboard}
	}

	if actor.Role != models.RoleAdmin {
		// Goal read stays outside the fan-out: a missing goal is not an error
		goal, err := s.Goals.ActiveFor(ctx, actor.UserID, timeutil.Now())
		if err == nil {
			remaining := goal.Target - goal.Achieved
			if remaining < 0 {
				remaining = 0
			}
			summary.GoalStats = &models.GoalStats{
				Target:    goal.Target,
				Achieved:  goal.Achieved,
				Remaining: remaining,
				StartDate: goal.StartDate.Format(timeutil.DateLayout),
				EndDate:   goal.EndDate.Format(timeutil.DateLayout),
			}
		}
	}

	cache.SetJSON(cacheKey, summary, cache.DashboardTTL)
	return summary, nil
}

// SummarizeFor computes the dashboard of one telecaller, viewed by a
// manager. The target must be inside the caller's scope.
func (s *DashboardService) SummarizeFor(ctx context.Context, actor *auth.Claims, userID int64, rangeName, tz, startDate, endDate string) (*models.DashboardSummary, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(userID) {
		return nil, forbiddenf("user %d is outside your scope", userID)
	}

	target, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	asTarget := &auth.Claims{
		UserID:   target.ID,
		Email:    target.Email,
		Role:     target.Role,
		LeaderID: target.LeaderID,
	}
	summary, err := s.Summarize(ctx, asTarget, rangeName, tz, startDate, endDate)
	if err != nil {
		return nil, err
	}

	// Drill-downs carry a little recent activity for context
	recentLeads, _, err := s.Leads.List(ctx, models.LeadFilter{AssignedTo: []int64{userID}}, recentSize, 0)
	if err != nil {
		return nil, err
	}
	recentCalls, _, err := s.Calls.List(ctx, models.CallFilter{TelecallerIDs: []int64{userID}}, recentSize, 0)
	if err != nil {
		return nil, err
	}
	summary.RecentLeads = recentLeads
	summary.RecentCalls = recentCalls
	return summary, nil
}

func (s *DashboardService) teamSize(ctx context.Context, actor *auth.Claims, scope Scope) (int, error) {
	if scope.Unrestricted {
		users, err := s.Users.List(ctx, models.RoleTelecaller, true)
		if err != nil {
			return 0, err
		}
		return len(users), nil
	}
	return len(scope.TelecallerIDs), nil
}

// buildLeadStats fills every canonical status so absent ones read as 0
func buildLeadStats(statusCounts, updatedCounts map[string]int, created, updated, started int) models.LeadStats {
	breakdown := make(map[string]int, len(models.LeadStatuses))
	updatedBreakdown := make(map[string]int, len(models.LeadStatuses))
	total := 0
	for _, status := range models.LeadStatuses {
		breakdown[status] = statusCounts[status]
		updatedBreakdown[status] = updatedCounts[status]
		total += statusCounts[status]
	}
	return models.LeadStats{
		StatusBreakdown:  breakdown,
		CreatedInWindow:  created,
		UpdatedInWindow:  updated,
		UpdatedBreakdown: updatedBreakdown,
		StartedInWindow:  started,
		Total:            total,
	}
}

// buildCallStats fills every canonical result; total is their sum
func buildCallStats(resultCounts map[string]int) models.CallStats {
	breakdown := make(map[string]int, len(models.CallResults))
	total := 0
	for _, result := range models.CallResults {
		breakdown[result] = resultCounts[result]
		total += resultCounts[result]
	}
	return models.CallStats{ResultBreakdown: breakdown, Total: total}
}
