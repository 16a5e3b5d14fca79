package auth

import (
	"context"
	"fmt"
	"strings"

	"mdip/core/store"
	"mdip/core/utils"
)

// Service owns account lifecycle: registration, credential checks and the
// admin-facing user listing. Sessions live in SessionManager.
type Service struct {
	users  store.UsersStore
	audit  store.AuditStore
	logger *utils.Logger
}

func NewService(users store.UsersStore, audit store.AuditStore, logger *utils.Logger) *Service {
	return &Service{users: users, audit: audit, logger: logger}
}

func (s *Service) Register(ctx context.Context, username, password, role string) (*UserDTO, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := utils.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", store.ErrValidation)
	}
	if !store.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", store.ErrValidation, role)
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &store.User{Username: username, PasswordHash: hash, Role: role}
	if _, err := s.users.Create(ctx, u); err != nil {
		// The unique index is the arbiter under concurrent registration.
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	s.audit.Log(ctx, username, "user.register", "role="+role)
	s.logger.Printf("registered user %s role=%s", username, role)
	return toDTO(u), nil
}

// Verify checks a credential pair. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Verify(ctx context.Context, username, password string) (*UserDTO, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return toDTO(u), nil
}

func (s *Service) Lookup(ctx context.Context, userID int64) (*UserDTO, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, store.ErrNotFound
	}
	return toDTO(u), nil
}

func (s *Service) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *toDTO(&users[i]))
	}
	return out, nil
}
