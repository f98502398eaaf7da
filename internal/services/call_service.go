package services

import (
	"context"
	"log"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/cache"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"
)

type CallService struct {
	Calls    *repositories.CallLogRepository
	Leads    *repositories.LeadRepository
	Goals    *repositories.GoalRepository
	Activity *repositories.ActivityLogRepository
	Scopes   *ScopeService
	LeadSvc  *LeadService
}

func NewCallService(calls *repositories.CallLogRepository, leads *repositories.LeadRepository,
	goals *repositories.GoalRepository, activity *repositories.ActivityLogRepository,
	scopes *ScopeService, leadSvc *LeadService) *CallService {
	return &CallService{Calls: calls, Leads: leads, Goals: goals, Activity: activity, Scopes: scopes, LeadSvc: leadSvc}
}

// statusForResult maps a call result onto the lead status it implies.
// Terminal statuses (closed, dead) are only ever set by an explicit
// lead update, never by logging a call.
func statusForResult(result string) string {
	if result == models.CallResultCallback {
		return models.LeadStatusCallback
	}
	return models.LeadStatusInProgress
}

// Log records one call attempt against a lead. The lead's call_count
// and last_call_at advance with every call; the caller's active weekly
// goal advances only on the lead's first transition out of "new".
func (s *CallService) Log(ctx context.Context, actor *auth.Claims, req *models.LogCallRequest) (*models.CallLog, error) {
	if !models.ValidCallResult(req.Result) {
		return nil, validationf("unknown call result %q", req.Result)
	}

	lead, err := s.LeadSvc.Get(ctx, actor, req.LeadID)
	if err != nil {
		return nil, err
	}

	callLog := &models.CallLog{
		LeadID:       lead.ID,
		TelecallerID: actor.UserID,
		Result:       req.Result,
		Remarks:      req.Remarks,
		DurationSecs: req.DurationSecs,
	}
	if err := s.Calls.Create(ctx, callLog); err != nil {
		return nil, err
	}

	now := timeutil.Now()
	nextStatus := statusForResult(req.Result)
	switch lead.Status {
	case models.LeadStatusNew:
		bumped, err := s.Leads.MarkFirstCall(ctx, lead.ID, nextStatus, now)
		if err != nil {
			return nil, err
		}
		if !bumped {
			// Lost the race to another first call, count it as a regular one
			if err := s.Leads.RecordCall(ctx, lead.ID, nextStatus, now); err != nil {
				return nil, err
			}
		} else if err := s.Goals.IncrementAchieved(ctx, actor.UserID, now); err != nil {
			log.Printf("[Call] goal increment failed for %d: %v", actor.UserID, err)
		}
	case models.LeadStatusClosed, models.LeadStatusDead:
		// Terminal leads keep their status, the call still counts
		if err := s.Leads.RecordCall(ctx, lead.ID, lead.Status, now); err != nil {
			return nil, err
		}
	default:
		if err := s.Leads.RecordCall(ctx, lead.ID, nextStatus, now); err != nil {
			return nil, err
		}
	}

	cache.InvalidateDashboard(actor.UserID)
	if err := s.Activity.Record(ctx, actor.UserID, models.ActionCallLogged, &callLog.ID,
		map[string]interface{}{"lead_id": lead.ID, "result": req.Result}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionCallLogged, err)
	}
	return callLog, nil
}

// List returns one scoped, filtered page of call logs
func (s *CallService) List(ctx context.Context, actor *auth.Claims, f models.CallFilter, limit, offset int) ([]*models.CallLog, int, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	f.TelecallerIDs = scope.TelecallerIDs
	f.ScopeEmpty = scope.Empty
	return s.Calls.List(ctx, f, limit, offset)
}

// ListForTelecaller returns one telecaller's calls, scope-checked
func (s *CallService) ListForTelecaller(ctx context.Context, actor *auth.Claims, telecallerID int64, limit, offset int) ([]*models.CallLog, int, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if !scope.Covers(telecallerID) {
		return nil, 0, forbiddenf("telecaller %d is outside your scope", telecallerID)
	}
	f := models.CallFilter{TelecallerIDs: []int64{telecallerID}}
	return s.Calls.List(ctx, f, limit, offset)
}
