// Package auth issues and verifies the bearer credentials that scope every
// expense operation to its owner. Passwords are bcrypt-hashed; tokens are
// HS256 JWTs carrying the owner id as subject; Google sign-in verifies the
// provider's ID token instead of a password.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

const minPasswordLength = 6

type Service struct {
	repo           *storage.SQLiteRepository
	secret         []byte
	tokenTTL       time.Duration
	googleClientID string
}

// NewService wires the auth service. An empty googleClientID disables
// Google sign-in.
func NewService(repo *storage.SQLiteRepository, secret string, tokenTTL time.Duration, googleClientID string) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &Service{
		repo:           repo,
		secret:         []byte(secret),
		tokenTTL:       tokenTTL,
		googleClientID: googleClientID,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, email, name, password string) (storage.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return storage.User{}, "", fmt.Errorf("%w: invalid email", core.ErrValidation)
	}
	if name == "" {
		return storage.User{}, "", fmt.Errorf("%w: empty name", core.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return storage.User{}, "", fmt.Errorf("%w: password must be at least %d characters", core.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, email, name, string(hash))
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return storage.User{}, "", fmt.Errorf("%w: email already registered", core.ErrValidation)
	}
	if err != nil {
		return storage.User{}, "", err
	}

	token, err := s.issueToken(u.ID)
	return u, token, err
}

// Login verifies the password and returns the account with a fresh token.
// A missing account and a wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (storage.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, "", fmt.Errorf("%w: invalid credentials", core.ErrAuth)
	}
	if err != nil {
		return storage.User{}, "", err
	}
	if u.PasswordHash == "" {
		return storage.User{}, "", fmt.Errorf("%w: account uses Google sign-in", core.ErrAuth)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return storage.User{}, "", fmt.Errorf("%w: invalid credentials", core.ErrAuth)
	}

	token, err := s.issueToken(u.ID)
	return u, token, err
}

// GoogleSignIn validates the Google-issued ID token and signs the matching
// account in, creating it on first contact.
func (s *Service) GoogleSignIn(ctx context.Context, rawIDToken string) (storage.User, string, error) {
	if s.googleClientID == "" {
		return storage.User{}, "", fmt.Errorf("%w: google sign-in not configured", core.ErrAuth)
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, s.googleClientID)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("%w: invalid google id token", core.ErrAuth)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return storage.User{}, "", fmt.Errorf("%w: google token carries no email", core.ErrAuth)
	}
	if name == "" {
		name = email
	}

	u, err := s.repo.GetOrCreateGoogleUser(ctx, payload.Subject, strings.ToLower(email), name)
	if err != nil {
		return storage.User{}, "", err
	}

	slog.InfoContext(ctx, "Google sign-in", "user_id", u.ID)
	token, err := s.issueToken(u.ID)
	return u, token, err
}

// VerifyToken returns the owner id a bearer token identifies, or
// core.ErrAuth for anything expired, malformed or signed with the wrong
// key.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", core.ErrAuth)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token carries no subject", core.ErrAuth)
	}
	return sub, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
