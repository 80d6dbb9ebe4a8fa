package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// User is an account owning an expense scope. PasswordHash is empty for
// accounts created through Google sign-in.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	GoogleSub    string
	CreatedAt    time.Time
}

// ErrDuplicateEmail reports a registration against an email that already
// has an account.
var ErrDuplicateEmail = errors.New("email already registered")

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, name, passwordHash string) (User, error) {
	if _, err := r.GetUserByEmail(ctx, email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at_ms)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", u.ID)
	return u, nil
}

// GetUserByEmail returns sql.ErrNoRows untouched so callers can branch on a
// missing account without string matching.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, COALESCE(password_hash, ''), COALESCE(google_sub, ''), created_at_ms
		FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, COALESCE(password_hash, ''), COALESCE(google_sub, ''), created_at_ms
		FROM users WHERE id = ?`, id))
}

// GetOrCreateGoogleUser looks an account up by its Google subject claim,
// falling back to email linkage and finally creating a fresh account.
func (r *SQLiteRepository) GetOrCreateGoogleUser(ctx context.Context, sub, email, name string) (User, error) {
	u, err := r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, COALESCE(password_hash, ''), COALESCE(google_sub, ''), created_at_ms
		FROM users WHERE google_sub = ?`, sub))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}

	if u, err = r.GetUserByEmail(ctx, email); err == nil {
		_, err = r.db.ExecContext(ctx, "UPDATE users SET google_sub = ? WHERE id = ?", sub, u.ID)
		if err != nil {
			return User{}, fmt.Errorf("link google account: %w", err)
		}
		u.GoogleSub = sub
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}

	u = User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		GoogleSub: sub,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, google_sub, created_at_ms)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.GoogleSub, u.CreatedAt.UnixMilli())
	if err != nil {
		return User{}, fmt.Errorf("insert google user: %w", err)
	}

	slog.InfoContext(ctx, "User registered via Google", "user_id", u.ID)
	return u, nil
}

func (r *SQLiteRepository) scanUser(row rowScanner) (User, error) {
	var (
		u  User
		ms int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleSub, &ms); err != nil {
		return User{}, err
	}
	u.CreatedAt = time.UnixMilli(ms).UTC()
	return u, nil
}
