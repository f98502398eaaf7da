package models

import "time"

// User roles
const (
	RoleAdmin      = "admin"
	RoleLeader     = "leader"
	RoleTelecaller = "telecaller"
)

type User struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Role         string     `json:"role"` // admin, leader or telecaller
	LeaderID     *int64     `json:"leader_id,omitempty"` // set only for telecallers
	LeaderName   string     `json:"leader_name,omitempty"` // Denormalized for display
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	ActiveGoal   *Goal      `json:"active_goal,omitempty"` // current weekly goal, attached on reads
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Team is the /api/teams payload: the leader plus their telecallers.
// Leader is nil for the admin all-telecallers view.
type Team struct {
	Leader  *User   `json:"leader"`
	Members []*User `json:"members"`
}

// FullName returns the display name for exports and dashboards
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLeader, RoleTelecaller:
		return true
	}
	return false
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	LeaderID  *int64 `json:"leader_id,omitempty"` // required when role is telecaller
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty"` // Optional, re-hashed when present
	Role      *string `json:"role,omitempty"`
	LeaderID  *int64  `json:"leader_id,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
