package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const CategorySecurity = "security"

type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	FileURL     string    `json:"file_url"`
	AuthorID    int64     `json:"author_id"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentsStore struct {
	db *sql.DB
}

func (s *DocumentsStore) Create(ctx context.Context, doc *Document) error {
	query := `
        INSERT INTO documents (title, category, file_url, author_id, author_email)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query,
		doc.Title,
		doc.Category,
		doc.FileURL,
		doc.AuthorID,
		doc.AuthorEmail,
	).Scan(&doc.ID, &doc.CreatedAt)
}

// List returns document metadata. Security-category rows are filtered out in
// the query itself unless the caller holds the can_read_security flag.
func (s *DocumentsStore) List(ctx context.Context, includeSecurity bool) ([]Document, error) {
	query := `
        SELECT id, title, category, file_url, author_id, author_email, created_at
        FROM documents
        WHERE category <> 'security' OR $1
        ORDER BY created_at DESC
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, includeSecurity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Category,
			&doc.FileURL,
			&doc.AuthorID,
			&doc.AuthorEmail,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *DocumentsStore) GetByID(ctx context.Context, documentID int64) (*Document, error) {
	query := `
        SELECT id, title, category, file_url, author_id, author_email, created_at
        FROM documents
        WHERE id = $1
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var doc Document
	err := s.db.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.Title,
		&doc.Category,
		&doc.FileURL,
		&doc.AuthorID,
		&doc.AuthorEmail,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document row with ownership scoping in the WHERE clause
// and returns the file URL so the handler can clean up the stored file.
func (s *DocumentsStore) Delete(ctx context.Context, documentID, authorID int64, isAdmin bool) (string, error) {
	query := `
        DELETE FROM documents
        WHERE id = $1 AND (author_id = $2 OR $3)
        RETURNING file_url
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var fileURL string
	err := s.db.QueryRowContext(ctx, query, documentID, authorID, isAdmin).Scan(&fileURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return fileURL, nil
}
