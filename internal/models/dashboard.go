package models

// DashboardSummary is the role-scoped reporting payload. goal_stats is
// present for non-admin callers, team_stats for admin/leader callers.
type DashboardSummary struct {
	LeadStats   LeadStats  `json:"lead_stats"`
	CallStats   CallStats  `json:"call_stats"`
	GoalStats   *GoalStats `json:"goal_stats,omitempty"`
	TeamStats   *TeamStats `json:"team_stats,omitempty"`
	RecentLeads []*Lead    `json:"recent_leads,omitempty"` // per-telecaller drill-down only
	RecentCalls []*CallLog `json:"recent_calls,omitempty"`
	Period      Period     `json:"period"`
	Role        string     `json:"role"`
}

// LeadStats mixes an all-time status snapshot with window-bound counts
type LeadStats struct {
	StatusBreakdown  map[string]int `json:"status_breakdown"` // all-time, all 5 statuses present
	CreatedInWindow  int            `json:"created_in_window"`
	UpdatedInWindow  int            `json:"updated_in_window"`
	UpdatedBreakdown map[string]int `json:"updated_breakdown"`
	StartedInWindow  int            `json:"started_in_window"` // last_call_at in window
	Total            int            `json:"total"`
}

type CallStats struct {
	ResultBreakdown map[string]int `json:"result_breakdown"` // all 4 results present
	Total           int            `json:"total"`
}

type GoalStats struct {
	Target    int    `json:"target"`
	Achieved  int    `json:"achieved"`
	Remaining int    `json:"remaining"` // max(0, target-achieved)
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type TeamStats struct {
	TeamSize    int              `json:"team_size"` // distinct active telecallers in scope
	Leaderboard []LeaderboardRow `json:"leaderboard"` // top 5 by calls
}

// LeaderboardRow is one telecaller's window performance
type LeaderboardRow struct {
	TelecallerID int64          `json:"telecaller_id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	TotalCalls   int            `json:"total_calls"`
	ByResult     map[string]int `json:"by_result"`
	Conversions  int            `json:"conversions"`
}

type Period struct {
	Range string `json:"range"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ImportRowError records why one upload row was skipped
type ImportRowError struct {
	Row    int      `json:"row"` // 1-based data row number
	Reason string   `json:"reason"`
	Fields []string `json:"fields,omitempty"` // original row values
}

// ImportResult summarizes a bulk lead upload
type ImportResult struct {
	Inserted int              `json:"inserted"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}
