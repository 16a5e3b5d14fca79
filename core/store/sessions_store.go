package store

import (
	"context"
	"database/sql"
	"time"
)

type SessionsStore interface {
	Save(ctx context.Context, sess *SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	UpdateActivity(ctx context.Context, id string, now time.Time, extendBy time.Duration) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionsStore struct {
	db *sql.DB
}

func NewSessionsStore(db *sql.DB) SessionsStore {
	return &sessionsStore{db: db}
}

const sessionColumns = `id, user_id, username, role, csrf_token, ip, user_agent, created_at, last_seen_at, expires_at, revoked, revoked_at`

func (s *sessionsStore) Save(ctx context.Context, sess *SessionRecord) error {
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.LastSeenAt.IsZero() {
		sess.LastSeenAt = sess.CreatedAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sessions(`+sessionColumns+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		sess.ID, sess.UserID, sess.Username, sess.Role, sess.CSRFToken, sess.IP, sess.UserAgent,
		fmtTime(sess.CreatedAt), fmtTime(sess.LastSeenAt), fmtTime(sess.ExpiresAt),
		boolToInt(sess.Revoked), fmtTimePtr(sess.RevokedAt))
	return err
}

// Get returns nil for missing, revoked and expired sessions; an expired
// session is revoked on the way out.
func (s *sessionsStore) Get(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id=?`, id)
	sr := SessionRecord{}
	var created, lastSeen, expires string
	var revoked int
	var revokedAt sql.NullString
	if err := row.Scan(&sr.ID, &sr.UserID, &sr.Username, &sr.Role, &sr.CSRFToken, &sr.IP, &sr.UserAgent,
		&created, &lastSeen, &expires, &revoked, &revokedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if sr.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if sr.LastSeenAt, err = parseTime(lastSeen); err != nil {
		return nil, err
	}
	if sr.ExpiresAt, err = parseTime(expires); err != nil {
		return nil, err
	}
	if sr.RevokedAt, err = scanTimePtr(revokedAt); err != nil {
		return nil, err
	}
	sr.Revoked = revoked == 1
	if sr.Revoked {
		return nil, nil
	}
	if time.Now().UTC().After(sr.ExpiresAt) {
		_ = s.Revoke(ctx, id)
		return nil, nil
	}
	return &sr, nil
}

func (s *sessionsStore) Revoke(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked=1, revoked_at=?, expires_at=? WHERE id=?`,
		fmtTime(now), fmtTime(now), id)
	return err
}

func (s *sessionsStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked=1, revoked_at=?, expires_at=? WHERE user_id=? AND revoked=0`,
		fmtTime(now), fmtTime(now), userID)
	return err
}

func (s *sessionsStore) UpdateActivity(ctx context.Context, id string, now time.Time, extendBy time.Duration) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at=?, expires_at=? WHERE id=? AND revoked=0`,
		fmtTime(now), fmtTime(now.Add(extendBy)), id)
	return err
}

func (s *sessionsStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE revoked=1 OR expires_at < ?`, fmtTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
