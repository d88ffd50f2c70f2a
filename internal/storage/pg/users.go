package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// User is one account row. Password holds the bcrypt hash, never plaintext.
type User struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       string
	Password       string
	AllowDownloads bool
}

type UserStore struct {
	pool *ConnectionPool
}

func NewUserStore(pool *ConnectionPool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.pool.GetConn().QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password, allow_downloads
		  FROM model_user
		 WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Password, &u.AllowDownloads)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// Create inserts a new account. Downloads stay disabled until granted
// manually.
func (s *UserStore) Create(ctx context.Context, u *User) error {
	_, err := s.pool.GetConn().Exec(ctx, `
		INSERT INTO model_user (email, first_name, last_name, password, allow_downloads)
		VALUES ($1, $2, $3, $4, false)`,
		u.Email, u.FirstName, u.LastName, u.Password)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
