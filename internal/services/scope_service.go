package services

import (
	"context"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
)

// Scope restricts which leads and calls a caller can see.
// Empty means the caller legitimately sees nothing (a leader with no
// team) and must never degrade to an unrestricted view.
type Scope struct {
	TelecallerIDs []int64
	Unrestricted  bool
	Empty         bool
}

type ScopeService struct {
	Users *repositories.UserRepository
}

func NewScopeService(users *repositories.UserRepository) *ScopeService {
	return &ScopeService{Users: users}
}

// Resolve computes the caller's visibility scope from their claims.
// Always resolvable: admins are unrestricted, telecallers see only
// themselves, leaders see their active telecallers and fail closed on
// an empty team.
func (s *ScopeService) Resolve(ctx context.Context, claims *auth.Claims) (Scope, error) {
	switch claims.Role {
	case models.RoleAdmin:
		return Scope{Unrestricted: true}, nil
	case models.RoleLeader:
		ids, err := s.Users.TeamIDs(ctx, claims.UserID)
		if err != nil {
			return Scope{}, err
		}
		if len(ids) == 0 {
			return Scope{Empty: true}, nil
		}
		return Scope{TelecallerIDs: ids}, nil
	default:
		return Scope{TelecallerIDs: []int64{claims.UserID}}, nil
	}
}

// LeadFilter converts the scope into a lead query filter
func (sc Scope) LeadFilter() models.LeadFilter {
	return models.LeadFilter{
		AssignedTo: sc.TelecallerIDs,
		ScopeEmpty: sc.Empty,
	}
}

// CallFilter converts the scope into a call-log query filter
func (sc Scope) CallFilter() models.CallFilter {
	return models.CallFilter{
		TelecallerIDs: sc.TelecallerIDs,
		ScopeEmpty:    sc.Empty,
	}
}

// Covers reports whether a telecaller id is visible in this scope
func (sc Scope) Covers(telecallerID int64) bool {
	if sc.Unrestricted {
		return true
	}
	for _, id := range sc.TelecallerIDs {
		if id == telecallerID {
			return true
		}
	}
	return false
}
