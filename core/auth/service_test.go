package auth

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mdip/config"
	"mdip/core/store"
	"mdip/core/utils"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "test.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	logger := utils.NewLogger()
	return NewService(store.NewUsersStore(db), store.NewAuditStore(db), logger), db
}

func TestRegisterAndVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "s3cretpass", store.RoleDatascience)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username not lowercased: %q", user.Username)
	}

	got, err := svc.Verify(ctx, "alice", "s3cretpass")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Role != store.RoleDatascience {
		t.Fatalf("role: %q", got.Role)
	}

	if _, err := svc.Verify(ctx, "alice", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Verify(ctx, "nobody", "s3cretpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "s3cretpass", store.RoleITOperations); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "BOB", "otherpass1", store.RoleAdmin); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		username, password, role string
	}{
		{"x", "s3cretpass", store.RoleAdmin},          // too short
		{"charlie", "short", store.RoleAdmin},         // weak password
		{"charlie", "s3cretpass", "superuser"},        // unknown role
		{"bad name!", "s3cretpass", store.RoleAdmin},  // invalid chars
	}
	for i, tc := range cases {
		if _, err := svc.Register(ctx, tc.username, tc.password, tc.role); !errors.Is(err, store.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestSessionManager(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	logger := utils.NewLogger()

	user, err := svc.Register(ctx, "dana", "s3cretpass", store.RoleCybersecurity)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr := NewSessionManager(store.NewSessionsStore(db), time.Hour, logger)
	sess, err := mgr.Issue(ctx, user, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.ID == "" || sess.CSRFToken == "" {
		t.Fatalf("session missing identifiers: %+v", sess)
	}

	got, err := mgr.Validate(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("validate: %v %v", got, err)
	}
	if got.Username != "dana" || got.Role != store.RoleCybersecurity {
		t.Fatalf("session identity: %+v", got)
	}

	if err := mgr.Revoke(ctx, sess.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err = mgr.Validate(ctx, sess.ID)
	if err != nil || got != nil {
		t.Fatalf("revoked session should not validate: %v %v", got, err)
	}

	got, err = mgr.Validate(ctx, "no-such-session")
	if err != nil || got != nil {
		t.Fatalf("unknown session should be nil,nil: %v %v", got, err)
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword("correct horse battery", hash) {
		t.Fatal("valid password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}
