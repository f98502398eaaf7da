package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

// leadWhere renders a LeadFilter into SQL conditions on alias ld.
// Always includes ld.active; a ScopeEmpty filter matches nothing.
func leadWhere(f models.LeadFilter) (string, []interface{}) {
	conds := []string{"ld.active"}
	var args []interface{}

	if f.ScopeEmpty {
		conds = append(conds, "FALSE")
	} else if len(f.AssignedTo) > 0 {
		args = append(args, f.AssignedTo)
		conds = append(conds, fmt.Sprintf("ld.assigned_to = ANY($%d)", len(args)))
	}
	if f.LeaderID != nil {
		args = append(args, *f.LeaderID)
		conds = append(conds, fmt.Sprintf("ld.leader_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		args = append(args, f.Statuses)
		conds = append(conds, fmt.Sprintf("ld.status = ANY($%d)", len(args)))
	}
	if f.Behaviour != "" {
		args = append(args, f.Behaviour)
		conds = append(conds, fmt.Sprintf("ld.behaviour = $%d", len(args)))
	}
	if f.Project != "" {
		args = append(args, f.Project)
		conds = append(conds, fmt.Sprintf("ld.project = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(ld.name ILIKE $%d OR ld.phone ILIKE $%d)", len(args), len(args)))
	}
	dateCol, ok := models.LeadDateFields[f.DateField]
	if !ok {
		dateCol = "created_at"
	}
	if f.WindowGTE != nil {
		args = append(args, *f.WindowGTE)
		conds = append(conds, fmt.Sprintf("ld.%s >= $%d", dateCol, len(args)))
	}
	if f.WindowLTE != nil {
		args = append(args, *f.WindowLTE)
		conds = append(conds, fmt.Sprintf("ld.%s <= $%d", dateCol, len(args)))
	}

	return strings.Join(conds, " AND "), args
}

const leadSelect = `
	SELECT ld.id, ld.name, ld.phone, COALESCE(ld.email, ''), ld.status, ld.behaviour,
	       COALESCE(ld.notes, ''), COALESCE(ld.source, ''), COALESCE(ld.project, ''),
	       ld.assigned_to, COALESCE(a.first_name || ' ' || a.last_name, ''),
	       ld.leader_id, ld.created_by, COALESCE(c.first_name || ' ' || c.last_name, ''),
	       ld.call_count, ld.last_call_at, ld.next_call_date, ld.active, ld.created_at, ld.updated_at
	FROM leads ld
	LEFT JOIN users a ON a.id = ld.assigned_to
	LEFT JOIN users c ON c.id = ld.created_by`

func scanLead(row pgx.Row) (*models.Lead, error) {
	var ld models.Lead
	err := row.Scan(&ld.ID, &ld.Name, &ld.Phone, &ld.Email, &ld.Status, &ld.Behaviour,
		&ld.Notes, &ld.Source, &ld.Project,
		&ld.AssignedTo, &ld.AssigneeName,
		&ld.LeaderID, &ld.CreatedBy, &ld.CreatorName,
		&ld.CallCount, &ld.LastCallAt, &ld.NextCallDate, &ld.Active, &ld.CreatedAt, &ld.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ld, nil
}

func (r *LeadRepository) Create(ctx context.Context, ld *models.Lead) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO leads(name, phone, email, status, behaviour, notes, source, project,
		        assigned_to, leader_id, created_by, next_call_date, active)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE)
         RETURNING id, created_at, updated_at`,
		ld.Name, ld.Phone, ld.Email, ld.Status, ld.Behaviour, ld.Notes, ld.Source, ld.Project,
		ld.AssignedTo, ld.LeaderID, ld.CreatedBy, ld.NextCallDate,
	).Scan(&ld.ID, &ld.CreatedAt, &ld.UpdatedAt)
}

func (r *LeadRepository) Get(ctx context.Context, id int64) (*models.Lead, error) {
	return scanLead(r.DB.QueryRow(ctx, leadSelect+` WHERE ld.id=$1`, id))
}

// List returns one page of leads matching the filter plus the total count
func (r *LeadRepository) List(ctx context.Context, f models.LeadFilter, limit, offset int) ([]*models.Lead, int, error) {
	where, args := leadWhere(f)

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads ld WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.DB.Query(ctx,
		leadSelect+` WHERE `+where+fmt.Sprintf(` ORDER BY ld.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		ld, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, ld)
	}
	return leads, total, rows.Err()
}

// ExportBatch pages through matching leads by id, keyset style. Rows
// are ordered by id so afterID from the previous batch resumes cleanly.
func (r *LeadRepository) ExportBatch(ctx context.Context, f models.LeadFilter, afterID int64, limit int) ([]*models.Lead, error) {
	where, args := leadWhere(f)
	args = append(args, afterID)
	where += fmt.Sprintf(" AND ld.id > $%d", len(args))
	args = append(args, limit)

	rows, err := r.DB.Query(ctx,
		leadSelect+` WHERE `+where+fmt.Sprintf(` ORDER BY ld.id LIMIT $%d`, len(args)),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		ld, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, ld)
	}
	return leads, rows.Err()
}

// DistinctUserIDs collects the assignee/leader/creator ids appearing in
// the filtered result, for one batched name lookup instead of per-row joins.
func (r *LeadRepository) DistinctUserIDs(ctx context.Context, f models.LeadFilter) ([]int64, error) {
	where, args := leadWhere(f)
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT uid FROM (
		     SELECT ld.assigned_to AS uid FROM leads ld WHERE `+where+`
		     UNION SELECT ld.leader_id FROM leads ld WHERE `+where+`
		     UNION SELECT ld.created_by FROM leads ld WHERE `+where+`
		 ) ids WHERE uid IS NOT NULL`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, ld *models.Lead) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET name=$1, email=$2, status=$3, behaviour=$4, notes=$5, source=$6,
		        project=$7, assigned_to=$8, leader_id=$9, next_call_date=$10, updated_at=now()
         WHERE id=$11`,
		ld.Name, ld.Email, ld.Status, ld.Behaviour, ld.Notes, ld.Source,
		ld.Project, ld.AssignedTo, ld.LeaderID, ld.NextCallDate, ld.ID)
	return err
}

// MarkFirstCall performs the first transition out of "new" in one
// statement: status change, call_count bump and last_call_at together.
// Returns false if the lead was not in "new" (someone raced ahead).
func (r *LeadRepository) MarkFirstCall(ctx context.Context, id int64, status string, at time.Time) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE leads SET status=$2, call_count=call_count+1, last_call_at=$3, updated_at=now()
         WHERE id=$1 AND status='new'`, id, status, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecordCall bumps call_count and last_call_at for a subsequent call
func (r *LeadRepository) RecordCall(ctx context.Context, id int64, status string, at time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET status=$2, call_count=call_count+1, last_call_at=$3, updated_at=now()
         WHERE id=$1`, id, status, at)
	return err
}

// BulkAssign moves a set of leads onto one assignee in a single
// statement, keeping the denormalized leader_id in step.
func (r *LeadRepository) BulkAssign(ctx context.Context, ids []int64, assignedTo int64, leaderID *int64) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE leads SET assigned_to=$2, leader_id=$3, updated_at=now()
         WHERE id = ANY($1) AND active`, ids, assignedTo, leaderID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ResyncLeader rewrites the denormalized leader_id on every lead
// assigned to the telecaller, after their leader changes.
func (r *LeadRepository) ResyncLeader(ctx context.Context, telecallerID int64, leaderID *int64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET leader_id=$2, updated_at=now() WHERE assigned_to=$1`, telecallerID, leaderID)
	return err
}

// SoftDelete flips active off, freeing the phone number for reuse
func (r *LeadRepository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET active=FALSE, updated_at=now() WHERE id=$1`, id)
	return err
}

// ActivePhoneExists checks phone uniqueness among active leads only
func (r *LeadRepository) ActivePhoneExists(ctx context.Context, phone string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE phone=$1 AND active`, phone).Scan(&n)
	return n > 0, err
}

// ActivePhones returns which of the given phones already exist among
// active leads, used by the bulk importer to pre-check a whole file.
func (r *LeadRepository) ActivePhones(ctx context.Context, phones []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(phones) == 0 {
		return existing, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT phone FROM leads WHERE phone = ANY($1) AND active`, phones)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		existing[p] = true
	}
	return existing, rows.Err()
}

// InsertBatch inserts validated import rows in one round trip
func (r *LeadRepository) InsertBatch(ctx context.Context, leads []*models.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, ld := range leads {
		batch.Queue(
			`INSERT INTO leads(name, phone, email, status, behaviour, notes, source, project,
			        assigned_to, leader_id, created_by, active)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)`,
			ld.Name, ld.Phone, ld.Email, ld.Status, ld.Behaviour, ld.Notes, ld.Source, ld.Project,
			ld.AssignedTo, ld.LeaderID, ld.CreatedBy)
	}

	br := r.DB.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range leads {
		if _, err := br.Exec(); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// StatusBreakdown counts leads per status, all-time, within scope
func (r *LeadRepository) StatusBreakdown(ctx context.Context, f models.LeadFilter) (map[string]int, error) {
	where, args := leadWhere(f)
	rows, err := r.DB.Query(ctx,
		`SELECT ld.status, COUNT(*) FROM leads ld WHERE `+where+` GROUP BY ld.status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// WindowCounts computes the window-bound dashboard figures in one query
func (r *LeadRepository) WindowCounts(ctx context.Context, f models.LeadFilter, start, end time.Time) (created, updated, started int, err error) {
	where, args := leadWhere(f)
	args = append(args, start, end)
	i, j := len(args)-1, len(args)
	err = r.DB.QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FILTER (WHERE ld.created_at BETWEEN $%d AND $%d),
		        COUNT(*) FILTER (WHERE ld.updated_at BETWEEN $%d AND $%d),
		        COUNT(*) FILTER (WHERE ld.last_call_at BETWEEN $%d AND $%d)
         FROM leads ld WHERE `+where, i, j, i, j, i, j), args...,
	).Scan(&created, &updated, &started)
	return
}

// UpdatedBreakdown counts leads touched in the window, grouped by status
func (r *LeadRepository) UpdatedBreakdown(ctx context.Context, f models.LeadFilter, start, end time.Time) (map[string]int, error) {
	where, args := leadWhere(f)
	args = append(args, start, end)
	rows, err := r.DB.Query(ctx, fmt.Sprintf(
		`SELECT ld.status, COUNT(*) FROM leads ld
         WHERE `+where+` AND ld.updated_at BETWEEN $%d AND $%d
         GROUP BY ld.status`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
