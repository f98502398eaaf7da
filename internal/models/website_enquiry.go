package models

import "time"

// Website enquiry statuses
const (
	EnquiryStatusNew  = "new"
	EnquiryStatusDone = "done"
)

// WebsiteEnquiry is an inbound public lead capture record
type WebsiteEnquiry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateEnquiryRequest represents the public enquiry form payload.
// Company is a honeypot field: bots fill it, humans never see it.
type CreateEnquiryRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Company string `json:"company"` // honeypot, must be empty
}
