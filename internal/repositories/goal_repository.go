package repositories

import (
	"context"
	"errors"
	"time"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GoalRepository struct {
	DB *pgxpool.Pool
}

func NewGoalRepository(db *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{DB: db}
}

// Upsert replaces target and window for any goal overlapping the new
// window, keeping achieved intact. Inserts when no overlap exists.
func (r *GoalRepository) Upsert(ctx context.Context, g *models.Goal) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE goals SET target=$2, start_date=$3, end_date=$4, updated_at=now()
         WHERE user_id=$1 AND start_date <= $4 AND end_date >= $3
         RETURNING id, achieved, created_at, updated_at`,
		g.UserID, g.Target, g.StartDate, g.EndDate,
	).Scan(&g.ID, &g.Achieved, &g.CreatedAt, &g.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO goals(user_id, target, achieved, start_date, end_date)
         VALUES($1, $2, 0, $3, $4)
         RETURNING id, achieved, created_at, updated_at`,
		g.UserID, g.Target, g.StartDate, g.EndDate,
	).Scan(&g.ID, &g.Achieved, &g.CreatedAt, &g.UpdatedAt)
}

// ActiveFor returns the goal whose window contains the given instant
func (r *GoalRepository) ActiveFor(ctx context.Context, userID int64, at time.Time) (*models.Goal, error) {
	var g models.Goal
	err := r.DB.QueryRow(ctx,
		`SELECT id, user_id, target, achieved, start_date, end_date, created_at, updated_at
         FROM goals WHERE user_id=$1 AND start_date <= $2 AND end_date >= $2
         ORDER BY start_date DESC LIMIT 1`, userID, at,
	).Scan(&g.ID, &g.UserID, &g.Target, &g.Achieved, &g.StartDate, &g.EndDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// IncrementAchieved bumps the goal active at the given instant, if any.
// A missing goal is not an error: the increment is simply skipped.
func (r *GoalRepository) IncrementAchieved(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE goals SET achieved=achieved+1, updated_at=now()
         WHERE user_id=$1 AND start_date <= $2 AND end_date >= $2`, userID, at)
	return err
}

// ListForUsers returns the goals of the given users, newest window first
func (r *GoalRepository) ListForUsers(ctx context.Context, userIDs []int64) ([]*models.Goal, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT g.id, g.user_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
		        g.target, g.achieved, g.start_date, g.end_date, g.created_at, g.updated_at
         FROM goals g
         LEFT JOIN users u ON u.id = g.user_id
         WHERE g.user_id = ANY($1)
         ORDER BY g.start_date DESC`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.UserName, &g.Target, &g.Achieved,
			&g.StartDate, &g.EndDate, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// ListAll returns every goal, newest window first
func (r *GoalRepository) ListAll(ctx context.Context) ([]*models.Goal, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT g.id, g.user_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
		        g.target, g.achieved, g.start_date, g.end_date, g.created_at, g.updated_at
         FROM goals g
         LEFT JOIN users u ON u.id = g.user_id
         ORDER BY g.start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.UserName, &g.Target, &g.Achieved,
			&g.StartDate, &g.EndDate, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}
