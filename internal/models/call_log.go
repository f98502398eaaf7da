package models

import "time"

// Call results
const (
	CallResultAnswered  = "answered"
	CallResultMissed    = "missed"
	CallResultCallback  = "callback"
	CallResultConverted = "converted"
)

// CallResults is the canonical result order used by breakdowns
var CallResults = []string{
	CallResultAnswered,
	CallResultMissed,
	CallResultCallback,
	CallResultConverted,
}

// ValidCallResult reports whether result is one of the known results
func ValidCallResult(result string) bool {
	for _, r := range CallResults {
		if result == r {
			return true
		}
	}
	return false
}

// CallLog is an immutable record of one call attempt
type CallLog struct {
	ID             int64     `json:"id"`
	LeadID         int64     `json:"lead_id"`
	LeadName       string    `json:"lead_name,omitempty"` // Denormalized for display
	TelecallerID   int64     `json:"telecaller_id"`
	TelecallerName string    `json:"telecaller_name,omitempty"`
	Result         string    `json:"result"`
	Remarks        string    `json:"remarks,omitempty"`
	DurationSecs   int       `json:"duration_secs,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LogCallRequest represents the request body for logging a call
type LogCallRequest struct {
	LeadID       int64  `json:"lead_id"`
	Result       string `json:"result"`
	Remarks      string `json:"remarks"`
	DurationSecs int    `json:"duration_secs"`
}

// CallFilter captures call-log list query parameters after scope resolution
type CallFilter struct {
	LeadID        *int64
	Result        string
	TelecallerIDs []int64 // scope restriction, empty = unrestricted
	ScopeEmpty    bool    // leader with no team, must match nothing
	CreatedGTE    *time.Time
	CreatedLTE    *time.Time
}
