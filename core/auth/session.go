package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"mdip/core/store"
	"mdip/core/utils"

	"github.com/gofrs/uuid/v5"
)

// SessionManager issues, validates and revokes DB-backed sessions. Validation
// slides the expiry forward so an active session stays alive.
type SessionManager struct {
	sessions store.SessionsStore
	ttl      time.Duration
	logger   *utils.Logger
}

func NewSessionManager(sessions store.SessionsStore, ttl time.Duration, logger *utils.Logger) *SessionManager {
	return &SessionManager{sessions: sessions, ttl: ttl, logger: logger}
}

func (m *SessionManager) Issue(ctx context.Context, user *UserDTO, ip, userAgent string) (*store.SessionRecord, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	csrf := make([]byte, 32)
	if _, err := rand.Read(csrf); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &store.SessionRecord{
		ID:         id.String(),
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		CSRFToken:  hex.EncodeToString(csrf),
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Validate returns nil for unknown, revoked or expired sessions.
func (m *SessionManager) Validate(ctx context.Context, id string) (*store.SessionRecord, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := m.sessions.Get(ctx, id)
	if err != nil || sess == nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := m.sessions.UpdateActivity(ctx, id, now, m.ttl); err != nil {
		m.logger.Warnf("session activity update failed: %v", err)
	}
	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(m.ttl)
	return sess, nil
}

func (m *SessionManager) Revoke(ctx context.Context, id string) error {
	return m.sessions.Revoke(ctx, id)
}

func (m *SessionManager) RevokeAllForUser(ctx context.Context, userID int64) error {
	return m.sessions.RevokeAllForUser(ctx, userID)
}

// FromContext returns the session attached by the middleware, or nil.
func FromContext(ctx context.Context) *store.SessionRecord {
	sess, _ := ctx.Value(SessionContextKey).(*store.SessionRecord)
	return sess
}
