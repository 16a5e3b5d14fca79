package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"mdip/config"
	"mdip/core/utils"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "test.db")}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func testSLA() SLAThresholds {
	return SLAThresholds{Urgent: 4, High: 8, Medium: 24, Low: 72}
}
