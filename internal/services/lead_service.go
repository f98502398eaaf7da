package services

import (
	"context"
	"errors"
	"log"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type LeadService struct {
	Leads    *repositories.LeadRepository
	Users    *repositories.UserRepository
	Goals    *repositories.GoalRepository
	Activity *repositories.ActivityLogRepository
	Scopes   *ScopeService
}

func NewLeadService(leads *repositories.LeadRepository, users *repositories.UserRepository,
	goals *repositories.GoalRepository, activity *repositories.ActivityLogRepository,
	scopes *ScopeService) *LeadService {
	return &LeadService{Leads: leads, Users: users, Goals: goals, Activity: activity, Scopes: scopes}
}

// resolveAssignee validates an assignment target and returns the
// denormalized leader id: the assignee's leader for telecallers, the
// assignee's own id for leaders.
func (s *LeadService) resolveAssignee(ctx context.Context, assigneeID int64) (*int64, error) {
	assignee, err := s.Users.Get(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, validationf("assigned_to user %d not found", assigneeID)
		}
		return nil, err
	}
	if !assignee.Active {
		return nil, validationf("cannot assign to a disabled user")
	}
	switch assignee.Role {
	case models.RoleTelecaller:
		return assignee.LeaderID, nil
	case models.RoleLeader:
		id := assignee.ID
		return &id, nil
	default:
		return nil, validationf("leads can only be assigned to telecallers or leaders")
	}
}

// Create adds a lead. Telecallers cannot create leads directly.
func (s *LeadService) Create(ctx context.Context, actor *auth.Claims, req *models.CreateLeadRequest) (*models.Lead, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot create leads")
	}
	if req.Name == "" {
		return nil, validationf("name is required")
	}

	phone, err := models.NormalizePhone(req.Phone)
	if err != nil {
		return nil, validationf("invalid phone %q", req.Phone)
	}
	exists, err := s.Leads.ActivePhoneExists(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictf("phone %s already exists", phone)
	}

	behaviour := models.BehaviourWarm
	if req.Behaviour != "" {
		b, ok := models.NormalizeBehaviour(req.Behaviour)
		if !ok {
			return nil, validationf("unknown behaviour %q", req.Behaviour)
		}
		behaviour = b
	}

	lead := &models.Lead{
		Name:         req.Name,
		Phone:        phone,
		Email:        req.Email,
		Status:       models.LeadStatusNew,
		Behaviour:    behaviour,
		Notes:        req.Notes,
		Source:       req.Source,
		Project:      models.NormalizeProject(req.Project),
		NextCallDate: req.NextCallDate,
		Active:       true,
	}
	actorID := actor.UserID
	lead.CreatedBy = &actorID

	if req.AssignedTo != nil {
		leaderID, err := s.resolveAssignee(ctx, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		lead.AssignedTo = req.AssignedTo
		lead.LeaderID = leaderID
	}

	if err := s.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.audit(ctx, actor.UserID, models.ActionLeadCreated, lead.ID, map[string]string{"phone": lead.Phone})
	return lead, nil
}

// Get returns one lead, enforcing the caller's scope
func (s *LeadService) Get(ctx context.Context, actor *auth.Claims, id int64) (*models.Lead, error) {
	lead, err := s.Leads.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("lead %d", id)
		}
		return nil, err
	}

	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !s.visible(scope, lead) {
		return nil, forbiddenf("lead %d is outside your scope", id)
	}
	return lead, nil
}

func (s *LeadService) visible(scope Scope, lead *models.Lead) bool {
	if scope.Unrestricted {
		return true
	}
	if scope.Empty || lead.AssignedTo == nil {
		return false
	}
	return scope.Covers(*lead.AssignedTo)
}

// List returns one scoped, filtered page of leads
func (s *LeadService) List(ctx context.Context, actor *auth.Claims, f models.LeadFilter, limit, offset int) ([]*models.Lead, int, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	f.AssignedTo = scope.TelecallerIDs
	f.ScopeEmpty = scope.Empty
	return s.Leads.List(ctx, f, limit, offset)
}

// ListForTelecaller returns one telecaller's leads, scope-checked
func (s *LeadService) ListForTelecaller(ctx context.Context, actor *auth.Claims, telecallerID int64, limit, offset int) ([]*models.Lead, int, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if !scope.Covers(telecallerID) {
		return nil, 0, forbiddenf("telecaller %d is outside your scope", telecallerID)
	}
	f := models.LeadFilter{AssignedTo: []int64{telecallerID}}
	return s.Leads.List(ctx, f, limit, offset)
}

// Update modifies a lead. Telecallers may only touch behaviour, notes
// and next_call_date on their own leads. Status can never go back to
// "new"; the first move off "new" bumps call_count, stamps last_call_at
// and advances the editor's active weekly goal.
func (s *LeadService) Update(ctx context.Context, actor *auth.Claims, id int64, req *models.UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleTelecaller {
		if req.Name != nil || req.Email != nil || req.Source != nil ||
			req.Project != nil || req.AssignedTo != nil {
			return nil, forbiddenf("telecallers may only update behaviour, notes, status and next_call_date")
		}
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, validationf("name cannot be empty")
		}
		lead.Name = *req.Name
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Project != nil {
		lead.Project = models.NormalizeProject(*req.Project)
	}
	if req.NextCallDate != nil {
		lead.NextCallDate = req.NextCallDate
	}
	if req.Behaviour != nil {
		b, ok := models.NormalizeBehaviour(*req.Behaviour)
		if !ok {
			return nil, validationf("unknown behaviour %q", *req.Behaviour)
		}
		lead.Behaviour = b
	}

	if req.AssignedTo != nil {
		leaderID, err := s.resolveAssignee(ctx, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		lead.AssignedTo = req.AssignedTo
		lead.LeaderID = leaderID
		s.audit(ctx, actor.UserID, models.ActionLeadAssigned, lead.ID, map[string]int64{"assigned_to": *req.AssignedTo})
	}

	if req.Status != nil {
		status, ok := models.NormalizeStatus(*req.Status)
		if !ok {
			return nil, validationf("unknown status %q", *req.Status)
		}
		if status == models.LeadStatusNew && lead.Status != models.LeadStatusNew {
			return nil, validationf("lead cannot return to status new")
		}
		if status != lead.Status {
			if lead.Status == models.LeadStatusNew {
				// First touch: counted exactly once even under races
				now := timeutil.Now()
				bumped, err := s.Leads.MarkFirstCall(ctx, lead.ID, status, now)
				if err != nil {
					return nil, err
				}
				if bumped {
					lead.CallCount++
					lead.LastCallAt = &now
					if err := s.Goals.IncrementAchieved(ctx, actor.UserID, now); err != nil {
						log.Printf("[Lead] goal increment failed for %d: %v", actor.UserID, err)
					}
				}
			}
			lead.Status = status
			s.audit(ctx, actor.UserID, models.ActionLeadStatusSet, lead.ID, map[string]string{"status": status})
		}
	}

	if err := s.Leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	s.audit(ctx, actor.UserID, models.ActionLeadUpdated, lead.ID, nil)
	return lead, nil
}

// BulkSetStatus moves a set of leads to one status. Each lead follows
// the same rules as a single status update; leads outside the caller's
// scope are skipped, not failed.
func (s *LeadService) BulkSetStatus(ctx context.Context, actor *auth.Claims, req *models.BulkStatusRequest) (int, error) {
	if actor.Role == models.RoleTelecaller {
		return 0, forbiddenf("telecallers cannot bulk-update leads")
	}
	if len(req.IDs) == 0 {
		return 0, validationf("no leads selected")
	}
	status, ok := models.NormalizeStatus(req.Status)
	if !ok {
		return 0, validationf("unknown status %q", req.Status)
	}
	if status == models.LeadStatusNew {
		return 0, validationf("leads cannot be moved back to status new")
	}

	updated := 0
	for _, id := range req.IDs {
		lead, err := s.Get(ctx, actor, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
				continue
			}
			return updated, err
		}
		if lead.Status == status {
			continue
		}
		if lead.Status == models.LeadStatusNew {
			now := timeutil.Now()
			bumped, err := s.Leads.MarkFirstCall(ctx, lead.ID, status, now)
			if err != nil {
				return updated, err
			}
			if bumped {
				if err := s.Goals.IncrementAchieved(ctx, actor.UserID, now); err != nil {
					log.Printf("[Lead] goal increment failed for %d: %v", actor.UserID, err)
				}
			}
		} else {
			lead.Status = status
			if err := s.Leads.Update(ctx, lead); err != nil {
				return updated, err
			}
		}
		updated++
	}

	if err := s.Activity.Record(ctx, actor.UserID, models.ActionLeadBulkStatus, nil,
		map[string]interface{}{"ids": req.IDs, "status": status, "updated": updated}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionLeadBulkStatus, err)
	}
	return updated, nil
}

// BulkAssign reassigns a set of leads to one user (admin only)
func (s *LeadService) BulkAssign(ctx context.Context, actor *auth.Claims, req *models.BulkAssignRequest) (int, error) {
	if actor.Role != models.RoleAdmin {
		return 0, forbiddenf("only admins can bulk-assign leads")
	}
	if len(req.IDs) == 0 {
		return 0, validationf("no leads selected")
	}

	leaderID, err := s.resolveAssignee(ctx, req.AssignedTo)
	if err != nil {
		return 0, err
	}

	updated, err := s.Leads.BulkAssign(ctx, req.IDs, req.AssignedTo, leaderID)
	if err != nil {
		return 0, err
	}
	if err := s.Activity.Record(ctx, actor.UserID, models.ActionLeadBulkAssign, nil,
		map[string]interface{}{"ids": req.IDs, "assigned_to": req.AssignedTo, "updated": updated}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionLeadBulkAssign, err)
	}
	return updated, nil
}

// Delete soft-deletes a lead, freeing its phone for reuse
func (s *LeadService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	if actor.Role == models.RoleTelecaller {
		return forbiddenf("telecallers cannot delete leads")
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.Leads.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor.UserID, models.ActionLeadDeleted, id, nil)
	return nil
}

func (s *LeadService) audit(ctx context.Context, actorID int64, action string, targetID int64, meta interface{}) {
	if err := s.Activity.Record(ctx, actorID, action, &targetID, meta); err != nil {
		log.Printf("[Audit] %s write failed: %v", action, err)
	}
}
