package models

import "time"

// Goal is a per-user weekly quota. Upserted per (user, week window);
// achieved survives re-upserts, only target and dates are replaceable.
type Goal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"` // Denormalized for display
	Target    int       `json:"target"`
	Achieved  int       `json:"achieved"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertGoalRequest represents the request body for setting a goal
type UpsertGoalRequest struct {
	UserID    int64  `json:"user_id"`
	Target    int    `json:"target"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to current ISO week
	EndDate   string `json:"end_date,omitempty"`
}
