package roles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 5 * time.Second

type Store interface {
	Get(ctx context.Context, userID int64) (Record, error)
	Set(ctx context.Context, rec Record) error
	ListUsersWithRoles(ctx context.Context) ([]UserWithRole, error)
}

type UserWithRole struct {
	UserID    int64    `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Role      RoleName `json:"role"`
	CanWrite  bool     `json:"can_write"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Get fetches the role row for a user. A missing row is not an error: it
// resolves to the visitor default. The user id is the canonical lookup key
// everywhere; email is never used for role lookups.
func (r *Repository) Get(ctx context.Context, userID int64) (Record, error) {
	query := `
        SELECT user_id, role, can_write, can_read_security, created_at, updated_at
        FROM user_roles
        WHERE user_id = $1
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rec Record
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.Role,
		&rec.CanWrite,
		&rec.CanReadSecurity,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Visitor(userID), nil
		}
		return Record{}, err
	}
	return rec, nil
}

// Set upserts a user's role row. Only the admin surface calls this.
func (r *Repository) Set(ctx context.Context, rec Record) error {
	query := `
        INSERT INTO user_roles (user_id, role, can_write, can_read_security)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET role = EXCLUDED.role,
            can_write = EXCLUDED.can_write,
            can_read_security = EXCLUDED.can_read_security,
            updated_at = now()
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, query, rec.UserID, rec.Role, rec.CanWrite, rec.CanReadSecurity)
	return err
}

func (r *Repository) ListUsersWithRoles(ctx context.Context) ([]UserWithRole, error) {
	query := `
        SELECT u.id, u.first_name, u.last_name, u.email,
               COALESCE(ur.role, 'visitor'), COALESCE(ur.can_write, false)
        FROM users u
        LEFT JOIN user_roles ur ON ur.user_id = u.id
        ORDER BY u.id
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserWithRole
	for rows.Next() {
		var u UserWithRole
		if err := rows.Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.CanWrite); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
