package store

import (
	"database/sql"
	"errors"
	"strings"

	"mdip/config"
	"mdip/core/utils"

	_ "modernc.org/sqlite"
)

// NewDB opens the backing database. SQLite is the default and primary store;
// postgres is available through the question-mark rewrite driver for larger
// deployments.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if driver == "" {
		if strings.TrimSpace(cfg.DBURL) != "" {
			driver = "postgres"
		} else {
			driver = "sqlite"
		}
	}
	switch driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return nil, errors.New("db_path is required for sqlite")
		}
		db, err := sql.Open("sqlite", cfg.DBPath)
		if err != nil {
			if logger != nil {
				logger.Errorf("db open failed: %v", err)
			}
			return nil, err
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY on concurrent requests.
		db.SetMaxOpenConns(1)
		if logger != nil {
			logger.Printf("db open sqlite path=%s", cfg.DBPath)
		}
		return db, nil
	case "postgres", "pg":
		if strings.TrimSpace(cfg.DBURL) == "" {
			return nil, errors.New("db_url is required for postgres")
		}
		db, err := sql.Open(postgresDriverName, cfg.DBURL)
		if err != nil {
			if logger != nil {
				logger.Errorf("db open failed: %v", err)
			}
			return nil, err
		}
		if logger != nil {
			logger.Printf("db open postgres")
		}
		return db, nil
	default:
		return nil, errors.New("unsupported db driver: " + driver)
	}
}
