package repositories

import (
	"context"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, first_name, last_name, email, COALESCE(phone, ''), password_hash, role, leader_id, active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.LeaderID, &u.Active, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(first_name, last_name, email, phone, password_hash, role, leader_id, active)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, u.Role, u.LeaderID, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
}

// List returns users filtered by role and active flag, newest first.
// Empty role means all roles; activeOnly=false includes disabled users.
func (r *UserRepository) List(ctx context.Context, role string, activeOnly bool) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.email, COALESCE(u.phone, ''), u.password_hash,
		        u.role, u.leader_id, u.active, u.last_login_at, u.created_at, u.updated_at,
		        COALESCE(l.first_name || ' ' || l.last_name, '')
         FROM users u
         LEFT JOIN users l ON l.id = u.leader_id
         WHERE ($1 = '' OR u.role = $1) AND (NOT $2 OR u.active)
         ORDER BY u.created_at DESC`, role, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
			&u.Role, &u.LeaderID, &u.Active, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.LeaderName)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// ListByLeader returns the telecallers reporting to a leader, newest
// first. Disabled members are included; callers decide what to show.
func (r *UserRepository) ListByLeader(ctx context.Context, leaderID int64) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+userColumns+` FROM users
         WHERE role='telecaller' AND leader_id=$1
         ORDER BY created_at DESC`, leaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TeamIDs returns ids of active telecallers reporting to the leader.
// An empty result is meaningful: scope resolution fails closed on it.
func (r *UserRepository) TeamIDs(ctx context.Context, leaderID int64) ([]int64, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id FROM users WHERE role='telecaller' AND leader_id=$1 AND active`, leaderID)
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

// NamesByIDs resolves display names for a batch of user ids in one query
func (r *UserRepository) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, first_name || ' ' || last_name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET first_name=$1, last_name=$2, email=$3, phone=$4, password_hash=$5,
		        role=$6, leader_id=$7, active=$8, updated_at=now()
         WHERE id=$9`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, u.Role, u.LeaderID, u.Active, u.ID)
	return err
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx, `UPDATE users SET last_login_at=now() WHERE id=$1`, id)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

// CountAdmins counts active admin accounts. Deleting the last one is blocked.
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role='admin' AND active`).Scan(&n)
	return n, err
}

// CountByEmail checks email uniqueness, optionally excluding one user id
func (r *UserRepository) CountByEmail(ctx context.Context, email string, excludeID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE lower(email)=lower($1) AND id <> $2`, email, excludeID).Scan(&n)
	return n, err
}
