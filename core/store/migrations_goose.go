package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"mdip/core/utils"

	"github.com/pressly/goose/v3"
)

//go:embed migrations_sqlite/*.sql
var gooseMigrationsSqliteFS embed.FS

//go:embed migrations_pg/*.sql
var gooseMigrationsPgFS embed.FS

// ApplyMigrations brings the schema up to date with goose. The dialect is
// probed from the open connection so callers don't have to thread the driver
// name through.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	isPG, err := isPostgresDB(ctx, db)
	if err != nil {
		return err
	}
	dialect, dir := "sqlite3", "migrations_sqlite"
	fsys := gooseMigrationsSqliteFS
	if isPG {
		dialect, dir = "postgres", "migrations_pg"
		fsys = gooseMigrationsPgFS
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	if logger != nil {
		logger.Printf("applying goose migrations dialect=%s", dialect)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("goose migrations applied")
	}
	return nil
}

func isPostgresDB(ctx context.Context, db *sql.DB) (bool, error) {
	var v string
	err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v)
	if err == nil {
		return false, nil
	}
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&v); err != nil {
		return false, err
	}
	return true, nil
}
