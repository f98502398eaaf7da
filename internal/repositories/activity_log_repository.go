package repositories

import (
	"context"
	"encoding/json"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityLogRepository struct {
	DB *pgxpool.Pool
}

func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{DB: db}
}

// Record appends one audit entry. metadata may be nil.
func (r *ActivityLogRepository) Record(ctx context.Context, actorID int64, action string, targetID *int64, metadata interface{}) error {
	var meta []byte
	if metadata != nil {
		meta, _ = json.Marshal(metadata)
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO activity_logs(actor_id, action, target_id, metadata)
         VALUES($1, $2, $3, $4)`, actorID, action, targetID, meta)
	return err
}

// List returns one page of audit entries, newest first
func (r *ActivityLogRepository) List(ctx context.Context, actorID *int64, action string, limit, offset int) ([]*models.ActivityLog, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_logs al
         WHERE ($1::bigint IS NULL OR al.actor_id = $1) AND ($2 = '' OR al.action = $2)`,
		actorID, action).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT al.id, al.actor_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
		        al.action, al.target_id, al.metadata, al.created_at
         FROM activity_logs al
         LEFT JOIN users u ON u.id = al.actor_id
         WHERE ($1::bigint IS NULL OR al.actor_id = $1) AND ($2 = '' OR al.action = $2)
         ORDER BY al.created_at DESC LIMIT $3 OFFSET $4`,
		actorID, action, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*models.ActivityLog
	for rows.Next() {
		var al models.ActivityLog
		err := rows.Scan(&al.ID, &al.ActorID, &al.ActorName, &al.Action, &al.TargetID, &al.Metadata, &al.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, &al)
	}
	return logs, total, rows.Err()
}
