package repositories

import (
	"context"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WebsiteEnquiryRepository struct {
	DB *pgxpool.Pool
}

func NewWebsiteEnquiryRepository(db *pgxpool.Pool) *WebsiteEnquiryRepository {
	return &WebsiteEnquiryRepository{DB: db}
}

func (r *WebsiteEnquiryRepository) Create(ctx context.Context, e *models.WebsiteEnquiry) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO website_enquiries(name, phone, email, message, status)
         VALUES($1, $2, $3, $4, 'new')
         RETURNING id, status, created_at, updated_at`,
		e.Name, e.Phone, e.Email, e.Message,
	).Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

func (r *WebsiteEnquiryRepository) Get(ctx context.Context, id int64) (*models.WebsiteEnquiry, error) {
	var e models.WebsiteEnquiry
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, phone, COALESCE(email, ''), COALESCE(message, ''), status, created_at, updated_at
         FROM website_enquiries WHERE id=$1`, id,
	).Scan(&e.ID, &e.Name, &e.Phone, &e.Email, &e.Message, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns one page of enquiries, optionally filtered by status
func (r *WebsiteEnquiryRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.WebsiteEnquiry, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM website_enquiries WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, name, phone, COALESCE(email, ''), COALESCE(message, ''), status, created_at, updated_at
         FROM website_enquiries WHERE ($1 = '' OR status = $1)
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var enquiries []*models.WebsiteEnquiry
	for rows.Next() {
		var e models.WebsiteEnquiry
		err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.Email, &e.Message, &e.Status, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		enquiries = append(enquiries, &e)
	}
	return enquiries, total, rows.Err()
}

func (r *WebsiteEnquiryRepository) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE website_enquiries SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	return err
}
