package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CallLogRepository struct {
	DB *pgxpool.Pool
}

func NewCallLogRepository(db *pgxpool.Pool) *CallLogRepository {
	return &CallLogRepository{DB: db}
}

func callWhere(f models.CallFilter) (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}

	if f.ScopeEmpty {
		conds = append(conds, "FALSE")
	} else if len(f.TelecallerIDs) > 0 {
		args = append(args, f.TelecallerIDs)
		conds = append(conds, fmt.Sprintf("cl.telecaller_id = ANY($%d)", len(args)))
	}
	if f.LeadID != nil {
		args = append(args, *f.LeadID)
		conds = append(conds, fmt.Sprintf("cl.lead_id = $%d", len(args)))
	}
	if f.Result != "" {
		args = append(args, f.Result)
		conds = append(conds, fmt.Sprintf("cl.result = $%d", len(args)))
	}
	if f.CreatedGTE != nil {
		args = append(args, *f.CreatedGTE)
		conds = append(conds, fmt.Sprintf("cl.created_at >= $%d", len(args)))
	}
	if f.CreatedLTE != nil {
		args = append(args, *f.CreatedLTE)
		conds = append(conds, fmt.Sprintf("cl.created_at <= $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func (r *CallLogRepository) Create(ctx context.Context, cl *models.CallLog) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO call_logs(lead_id, telecaller_id, result, remarks, duration_secs)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		cl.LeadID, cl.TelecallerID, cl.Result, cl.Remarks, cl.DurationSecs,
	).Scan(&cl.ID, &cl.CreatedAt)
}

// List returns one page of call logs with lead and telecaller names joined
func (r *CallLogRepository) List(ctx context.Context, f models.CallFilter, limit, offset int) ([]*models.CallLog, int, error) {
	where, args := callWhere(f)

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM call_logs cl WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.DB.Query(ctx,
		`SELECT cl.id, cl.lead_id, COALESCE(ld.name, ''), cl.telecaller_id,
		        COALESCE(u.first_name || ' ' || u.last_name, ''),
		        cl.result, COALESCE(cl.remarks, ''), cl.duration_secs, cl.created_at
         FROM call_logs cl
         LEFT JOIN leads ld ON ld.id = cl.lead_id
         LEFT JOIN users u ON u.id = cl.telecaller_id
         WHERE `+where+fmt.Sprintf(` ORDER BY cl.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var calls []*models.CallLog
	for rows.Next() {
		var cl models.CallLog
		err := rows.Scan(&cl.ID, &cl.LeadID, &cl.LeadName, &cl.TelecallerID, &cl.TelecallerName,
			&cl.Result, &cl.Remarks, &cl.DurationSecs, &cl.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		calls = append(calls, &cl)
	}
	return calls, total, rows.Err()
}

// ResultBreakdown counts calls per result within the scope and window
func (r *CallLogRepository) ResultBreakdown(ctx context.Context, f models.CallFilter) (map[string]int, error) {
	where, args := callWhere(f)
	rows, err := r.DB.Query(ctx,
		`SELECT cl.result, COUNT(*) FROM call_logs cl WHERE `+where+` GROUP BY cl.result`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		counts[result] = n
	}
	return counts, rows.Err()
}

// Leaderboard ranks telecallers by call volume within the scope and
// window, with per-result counts, truncated to limit rows.
func (r *CallLogRepository) Leaderboard(ctx context.Context, f models.CallFilter, limit int) ([]models.LeaderboardRow, error) {
	where, args := callWhere(f)
	args = append(args, limit)
	rows, err := r.DB.Query(ctx, fmt.Sprintf(
		`SELECT cl.telecaller_id, COALESCE(u.first_name || ' ' || u.last_name, ''), COALESCE(u.email, ''),
		        COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE cl.result='answered'),
		        COUNT(*) FILTER (WHERE cl.result='missed'),
		        COUNT(*) FILTER (WHERE cl.result='callback'),
		        COUNT(*) FILTER (WHERE cl.result='converted')
         FROM call_logs cl
         LEFT JOIN users u ON u.id = cl.telecaller_id
         WHERE `+where+`
         GROUP BY cl.telecaller_id, u.first_name, u.last_name, u.email
         ORDER BY total DESC
         LIMIT $%d`, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var board []models.LeaderboardRow
	for rows.Next() {
		var row models.LeaderboardRow
		var answered, missed, callback, converted int
		err := rows.Scan(&row.TelecallerID, &row.Name, &row.Email, &row.TotalCalls,
			&answered, &missed, &callback, &converted)
		if err != nil {
			return nil, err
		}
		row.ByResult = map[string]int{
			models.CallResultAnswered:  answered,
			models.CallResultMissed:    missed,
			models.CallResultCallback:  callback,
			models.CallResultConverted: converted,
		}
		row.Conversions = converted
		board = append(board, row)
	}
	return board, rows.Err()
}

// CountInWindow counts one telecaller's calls between start and end
func (r *CallLogRepository) CountInWindow(ctx context.Context, telecallerID int64, start, end time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM call_logs WHERE telecaller_id=$1 AND created_at BETWEEN $2 AND $3`,
		telecallerID, start, end).Scan(&n)
	return n, err
}
