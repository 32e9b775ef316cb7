package branches

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 5 * time.Second

var ErrNotFound = errors.New("branch not found")

type Store interface {
	Create(ctx context.Context, branch *Branch) error
	List(ctx context.Context) ([]Branch, error)
	UpdateTags(ctx context.Context, branchID int64, tags []string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, branch *Branch) error {
	query := `
        INSERT INTO branches (name, address, location, tags)
        VALUES ($1, $2, point($3, $4), $5)
        RETURNING id, created_at, updated_at
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var lng, lat float64
	if len(branch.Location) == 2 {
		lng, lat = branch.Location[0], branch.Location[1]
	}

	return r.db.QueryRow(ctx, query,
		branch.Name,
		branch.Address,
		lng,
		lat,
		branch.Tags,
	).Scan(&branch.ID, &branch.CreatedAt, &branch.UpdatedAt)
}

func (r *Repository) List(ctx context.Context) ([]Branch, error) {
	query := `
        SELECT id, name, address, location, tags, created_at, updated_at
        FROM branches
        ORDER BY name
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		var b Branch
		var loc pgtype.Point
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &loc, &b.Tags, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if loc.Valid {
			b.Location = []float64{loc.P.X, loc.P.Y}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateTags replaces a branch's tag list. Callers gate this behind the
// branch-tags capability.
func (r *Repository) UpdateTags(ctx context.Context, branchID int64, tags []string) error {
	query := `
        UPDATE branches
        SET tags = $1, updated_at = now()
        WHERE id = $2
        RETURNING id
    `

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRow(ctx, query, tags, branchID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
