package store

import (
	"context"
	"database/sql"
	"time"
)

type AuditStore interface {
	Log(ctx context.Context, username, action, details string)
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) AuditStore {
	return &auditStore{db: db}
}

// Log is fire-and-forget: an audit write never fails the operation it
// records.
func (s *auditStore) Log(ctx context.Context, username, action, details string) {
	_, _ = s.db.ExecContext(ctx, `
		INSERT INTO audit_log(username, action, details, created_at)
		VALUES(?,?,?,?)`,
		username, action, details, fmtTime(time.Now().UTC()))
}

func (s *auditStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, action, details, created_at
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []AuditEntry
	for rows.Next() {
		e := AuditEntry{}
		var created string
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Details, &created); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *auditStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
