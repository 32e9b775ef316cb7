package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags,omitempty"`
	AuthorID    int64     `json:"author_id"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PostsStore struct {
	db *sql.DB
}

func (s *PostsStore) Create(ctx context.Context, post *Post) error {
	query := `
        INSERT INTO posts (title, body, tags, author_id, author_email)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query,
		post.Title,
		post.Body,
		pq.Array(post.Tags),
		post.AuthorID,
		post.AuthorEmail,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (s *PostsStore) GetByID(ctx context.Context, postID int64) (*Post, error) {
	query := `
        SELECT id, title, body, tags, author_id, author_email, created_at, updated_at
        FROM posts
        WHERE id = $1
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var post Post
	err := s.db.QueryRowContext(ctx, query, postID).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		pq.Array(&post.Tags),
		&post.AuthorID,
		&post.AuthorEmail,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostsStore) List(ctx context.Context, limit, offset int) ([]Post, error) {
	query := `
        SELECT id, title, body, tags, author_id, author_email, created_at, updated_at
        FROM posts
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (s *PostsStore) ListByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	query := `
        SELECT id, title, body, tags, author_id, author_email, created_at, updated_at
        FROM posts
        WHERE author_id = $1
        ORDER BY created_at DESC
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var post Post
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Body,
			pq.Array(&post.Tags),
			&post.AuthorID,
			&post.AuthorEmail,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Update rewrites a post's content. Ownership is enforced in the WHERE
// clause, not checked beforehand, so a concurrent role or ownership change
// cannot slip an unauthorized write through. Zero rows affected means the
// row does not exist or the caller may not touch it; both come back as
// ErrNotFound.
func (s *PostsStore) Update(ctx context.Context, post *Post, authorID int64, isAdmin bool) error {
	query := `
        UPDATE posts
        SET title = $1, body = $2, tags = $3, updated_at = now()
        WHERE id = $4 AND (author_id = $5 OR $6)
        RETURNING updated_at
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRowContext(ctx, query,
		post.Title,
		post.Body,
		pq.Array(post.Tags),
		post.ID,
		authorID,
		isAdmin,
	).Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a post with the same ownership scoping as Update. Deleting
// an already-deleted post is a clean ErrNotFound.
func (s *PostsStore) Delete(ctx context.Context, postID, authorID int64, isAdmin bool) error {
	query := `
        DELETE FROM posts
        WHERE id = $1 AND (author_id = $2 OR $3)
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, postID, authorID, isAdmin)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
