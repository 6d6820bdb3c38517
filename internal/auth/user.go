package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrUserExists         = errors.New("user with this email or phone already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Number    string    `json:"number"`
	Role      string    `json:"role"`
	Hash      []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserStore interface {
	Create(ctx context.Context, u User, password string) (User, error)
	Verify(ctx context.Context, email, password string) (User, error)
	Ping(ctx context.Context) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePassword(password string) string {
	return strings.TrimSpace(password)
}

// EnsureAdmin creates the admin account if it does not exist yet.
func EnsureAdmin(ctx context.Context, store UserStore, id, email, password string) error {
	_, err := store.Create(ctx, User{
		ID:       id,
		Username: "admin",
		Email:    email,
		Role:     RoleAdmin,
	}, password)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}
