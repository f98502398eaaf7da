package models

import (
	"encoding/json"
	"time"
)

// ActivityLog is an append-only audit record of a mutating action
type ActivityLog struct {
	ID        int64           `json:"id"`
	ActorID   int64           `json:"actor_id"`
	ActorName string          `json:"actor_name,omitempty"` // Denormalized for display
	Action    string          `json:"action"`
	TargetID  *int64          `json:"target_id,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Action names written by the services
const (
	ActionUserCreated    = "user.created"
	ActionUserUpdated    = "user.updated"
	ActionUserDeleted    = "user.deleted"
	ActionLeadCreated    = "lead.created"
	ActionLeadUpdated    = "lead.updated"
	ActionLeadStatusSet  = "lead.status_changed"
	ActionLeadAssigned   = "lead.assigned"
	ActionLeadBulkStatus = "lead.bulk_status_changed"
	ActionLeadBulkAssign = "lead.bulk_assigned"
	ActionLeadDeleted    = "lead.deleted"
	ActionLeadImported   = "lead.bulk_imported"
	ActionLeadExported   = "lead.exported"
	ActionCallLogged     = "call.logged"
	ActionGoalUpserted   = "goal.upserted"
	ActionEnquiryHandled = "enquiry.handled"
)
