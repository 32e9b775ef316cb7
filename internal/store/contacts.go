package store

import (
	"context"
	"database/sql"
	"time"
)

type Contact struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactsStore struct {
	db *sql.DB
}

func (s *ContactsStore) Create(ctx context.Context, contact *Contact) error {
	query := `
        INSERT INTO contacts (reference, name, email, subject, message)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query,
		contact.Reference,
		contact.Name,
		contact.Email,
		contact.Subject,
		contact.Message,
	).Scan(&contact.ID, &contact.CreatedAt)
}

// SetReference fills in the hashid code once the row id is known.
func (s *ContactsStore) SetReference(ctx context.Context, contactID int64, reference string) error {
	query := `UPDATE contacts SET reference = $1 WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, reference, contactID)
	return err
}

func (s *ContactsStore) List(ctx context.Context, limit, offset int) ([]Contact, error) {
	query := `
        SELECT id, reference, name, email, subject, message, created_at
        FROM contacts
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

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Reference, &c.Name, &c.Email, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
