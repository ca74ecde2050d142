package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type (
	User struct {
		ID           string
		Username     string
		Email        string
		PasswordHash string
	}
)

// InsertUser stores u with a fresh ID.
// A user with the same email results in UniqueViolation.
func (s *Store) InsertUser(ctx context.Context, u User) (User, error) {
	u.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `insert into users(user_id, username, email, password_hash) values (?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("unable to store user, cause %w", asUniqueViolation(err))
	}
	return u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select user_id, username, email, password_hash from users where email = ?`, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, NotFound{Kind: "user"}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user by email, cause %w", err)
	}
	return u, nil
}
