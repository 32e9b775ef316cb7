package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		SaveRefreshToken(ctx context.Context, userID int64, token string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
	Posts interface {
		Create(context.Context, *Post) error
		GetByID(context.Context, int64) (*Post, error)
		List(context.Context, int, int) ([]Post, error)
		ListByAuthor(context.Context, int64) ([]Post, error)
		Update(ctx context.Context, post *Post, authorID int64, isAdmin bool) error
		Delete(ctx context.Context, postID, authorID int64, isAdmin bool) error
	}
	Documents interface {
		Create(context.Context, *Document) error
		List(ctx context.Context, includeSecurity bool) ([]Document, error)
		GetByID(context.Context, int64) (*Document, error)
		Delete(ctx context.Context, documentID, authorID int64, isAdmin bool) (string, error)
	}
	Contacts interface {
		Create(context.Context, *Contact) error
		SetReference(ctx context.Context, contactID int64, reference string) error
		List(context.Context, int, int) ([]Contact, error)
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users:     &UsersStore{db},
		Posts:     &PostsStore{db},
		Documents: &DocumentsStore{db},
		Contacts:  &ContactsStore{db},
	}
}
