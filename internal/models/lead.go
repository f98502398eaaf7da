package models

import (
	"errors"
	"strings"
	"time"
)

// Lead statuses. Once a lead leaves "new" it can never return to it.
const (
	LeadStatusNew        = "new"
	LeadStatusInProgress = "in_progress"
	LeadStatusCallback   = "callback"
	LeadStatusClosed     = "closed"
	LeadStatusDead       = "dead"
)

// Lead behaviours
const (
	BehaviourWarm = "warm"
	BehaviourHot  = "hot"
	BehaviourCold = "cold"
)

// LeadStatuses is the canonical status order used by breakdowns
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusInProgress,
	LeadStatusCallback,
	LeadStatusClosed,
	LeadStatusDead,
}

// ProjectOptions is the fixed list of projects a lead can belong to
var ProjectOptions = []string{
	"Golden City",
	"Green Valley",
	"Sunrise Residency",
	"Lake View Heights",
	"Metro Business Park",
	"Other",
}

var ErrInvalidPhone = errors.New("invalid phone number")

type Lead struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"` // canonical +<countrycode><digits>
	Email        string     `json:"email,omitempty"`
	Status       string     `json:"status"`
	Behaviour    string     `json:"behaviour"`
	Notes        string     `json:"notes,omitempty"`
	Source       string     `json:"source,omitempty"`
	Project      string     `json:"project,omitempty"`
	AssignedTo   *int64     `json:"assigned_to,omitempty"` // telecaller user id
	AssigneeName string     `json:"assignee_name,omitempty"` // Denormalized for display
	LeaderID     *int64     `json:"leader_id,omitempty"` // kept in sync with assignee's leader
	CreatedBy    *int64     `json:"created_by,omitempty"`
	CreatorName  string     `json:"creator_name,omitempty"`
	CallCount    int        `json:"call_count"`
	LastCallAt   *time.Time `json:"last_call_at,omitempty"`
	NextCallDate *time.Time `json:"next_call_date,omitempty"`
	Active       bool       `json:"active"` // phone uniqueness is scoped to active leads
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NormalizePhone converts a raw phone string into the canonical
// +<countrycode><digits> form. Strips every non-digit, then applies the
// Indian default country code. Idempotent: normalizing an already
// canonical number returns it unchanged.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) < 10:
		return "", ErrInvalidPhone
	case len(digits) == 10:
		return "+91" + digits, nil
	case strings.HasPrefix(digits, "91") && len(digits) >= 12:
		return "+" + digits, nil
	default:
		return "+91" + digits, nil
	}
}

// NormalizeStatus lowercases and validates a lead status
func NormalizeStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range LeadStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// NormalizeBehaviour lowercases and validates a lead behaviour
func NormalizeBehaviour(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case BehaviourWarm, BehaviourHot, BehaviourCold:
		return s, true
	}
	return "", false
}

// NormalizeProject matches a free-form project name against the fixed
// project list, case-insensitively. Unknown projects map to "Other".
func NormalizeProject(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	for _, p := range ProjectOptions {
		if strings.EqualFold(trimmed, p) {
			return p
		}
	}
	return "Other"
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Behaviour    string     `json:"behaviour"`
	Notes        string     `json:"notes"`
	Source       string     `json:"source"`
	Project      string     `json:"project"`
	AssignedTo   *int64     `json:"assigned_to,omitempty"`
	NextCallDate *time.Time `json:"next_call_date,omitempty"`
}

// UpdateLeadRequest represents the request body for updating a lead.
// Telecallers may only set behaviour, notes and next_call_date.
type UpdateLeadRequest struct {
	Name         *string    `json:"name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Behaviour    *string    `json:"behaviour,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Source       *string    `json:"source,omitempty"`
	Project      *string    `json:"project,omitempty"`
	AssignedTo   *int64     `json:"assigned_to,omitempty"`
	NextCallDate *time.Time `json:"next_call_date,omitempty"`
}

// BulkStatusRequest moves a set of leads to one status at once
type BulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

// BulkAssignRequest reassigns a set of leads to one user
type BulkAssignRequest struct {
	IDs        []int64 `json:"ids"`
	AssignedTo int64   `json:"assigned_to"`
}

// LeadDateFields maps the window field selectors accepted by exports
// to their columns. created_at is the default.
var LeadDateFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"lastCallAt":   "last_call_at",
	"nextCallDate": "next_call_date",
}

// LeadFilter captures the list/export query parameters after scope
// resolution. Empty slices and nil pointers mean "no restriction",
// except ScopeEmpty which matches nothing.
type LeadFilter struct {
	Statuses   []string
	Behaviour  string
	Project    string
	Search     string
	AssignedTo []int64 // scope restriction, empty = unrestricted
	LeaderID   *int64  // restrict by the denormalized lead owner
	ScopeEmpty bool    // leader with no team, must match nothing
	DateField  string  // LeadDateFields key the window binds to, default createdAt
	WindowGTE  *time.Time
	WindowLTE  *time.Time
}
