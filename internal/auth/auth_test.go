package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewService(repo, "test-secret", time.Hour, "")
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, token, err := svc.Register(ctx, "A@Example.com", "Alice", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "a@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if token == "" {
		t.Fatal("register must issue a token")
	}

	got, token2, err := svc.Login(ctx, "a@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || token2 == "" {
		t.Fatalf("login user = %+v", got)
	}

	owner, err := svc.VerifyToken(token2)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if owner != u.ID {
		t.Fatalf("token subject = %q, want %q", owner, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cases := []struct {
		name, email, user, password string
	}{
		{"bad email", "nope", "Alice", "hunter22"},
		{"empty name", "a@example.com", "  ", "hunter22"},
		{"short password", "a@example.com", "Alice", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tc.email, tc.user, tc.password); !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, _, err := svc.Register(ctx, "a@example.com", "Alice", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@example.com", "Alice", "hunter22"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate email: expected validation error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, _, _ = svc.Register(ctx, "a@example.com", "Alice", "hunter22")

	if _, _, err := svc.Login(ctx, "a@example.com", "wrong"); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("wrong password: expected ErrAuth, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "hunter22"); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("missing account: expected ErrAuth, got %v", err)
	}
}

func TestVerifyTokenFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, token, _ := svc.Register(ctx, "a@example.com", "Alice", "hunter22")

	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("garbage token: expected ErrAuth, got %v", err)
	}

	other := NewService(nil, "other-secret", time.Hour, "")
	if _, err := other.VerifyToken(token); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("wrong key: expected ErrAuth, got %v", err)
	}

	short := NewService(nil, "test-secret", time.Millisecond, "")
	stale, err := short.issueToken("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := short.VerifyToken(stale); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("expired token: expected ErrAuth, got %v", err)
	}
}

func TestGoogleSignInDisabled(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.GoogleSignIn(context.Background(), "token"); !errors.Is(err, core.ErrAuth) {
		t.Fatalf("expected ErrAuth when google sign-in unconfigured, got %v", err)
	}
}
