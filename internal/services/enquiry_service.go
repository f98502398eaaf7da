package services

import (
	"context"
	"errors"
	"log"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type EnquiryService struct {
	Enquiries     *repositories.WebsiteEnquiryRepository
	Users         *repositories.UserRepository
	Notifications *repositories.NotificationRepository
	Activity      *repositories.ActivityLogRepository
}

func NewEnquiryService(enquiries *repositories.WebsiteEnquiryRepository, users *repositories.UserRepository,
	notifications *repositories.NotificationRepository, activity *repositories.ActivityLogRepository) *EnquiryService {
	return &EnquiryService{Enquiries: enquiries, Users: users, Notifications: notifications, Activity: activity}
}

// Submit records a public website enquiry. The honeypot field silently
// drops bot submissions: the caller still gets a success response.
func (s *EnquiryService) Submit(ctx context.Context, req *models.CreateEnquiryRequest) (*models.WebsiteEnquiry, error) {
	if req.Company != "" {
		return nil, nil // bot, pretend success
	}
	if req.Name == "" {
		return nil, validationf("name is required")
	}
	phone, err := models.NormalizePhone(req.Phone)
	if err != nil {
		return nil, validationf("invalid phone %q", req.Phone)
	}

	enquiry := &models.WebsiteEnquiry{
		Name:    req.Name,
		Phone:   phone,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := s.Enquiries.Create(ctx, enquiry); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, enquiry)
	return enquiry, nil
}

// notifyAdmins pushes an in-app notification to every active admin
func (s *EnquiryService) notifyAdmins(ctx context.Context, enquiry *models.WebsiteEnquiry) {
	admins, err := s.Users.List(ctx, models.RoleAdmin, true)
	if err != nil {
		log.Printf("[Enquiry] admin lookup failed: %v", err)
		return
	}
	for _, admin := range admins {
		n := &models.Notification{
			UserID:  admin.ID,
			Title:   "New website enquiry",
			Message: enquiry.Name + " (" + enquiry.Phone + ")",
		}
		if err := s.Notifications.Create(ctx, n); err != nil {
			log.Printf("[Enquiry] notification to %d failed: %v", admin.ID, err)
		}
	}
}

// SetStatus marks an enquiry handled or reopens it
func (s *EnquiryService) SetStatus(ctx context.Context, actor *auth.Claims, id int64, status string) (*models.WebsiteEnquiry, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot manage enquiries")
	}
	if status != models.EnquiryStatusNew && status != models.EnquiryStatusDone {
		return nil, validationf("unknown enquiry status %q", status)
	}

	enquiry, err := s.Enquiries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("enquiry %d", id)
		}
		return nil, err
	}

	if err := s.Enquiries.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	enquiry.Status = status

	if err := s.Activity.Record(ctx, actor.UserID, models.ActionEnquiryHandled, &id,
		map[string]string{"status": status}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionEnquiryHandled, err)
	}
	return enquiry, nil
}
