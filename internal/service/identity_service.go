package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

// IdentityService starts and ends sessions.
type IdentityService interface {
	// Login accepts any non-empty username and password. The role comes from the admin allow-list.
	Login(ctx context.Context, username, password string) (session *auth.Session, token string, err error)
	Logout(ctx context.Context, sessionID string) error
}

type identityService struct {
	roles      repository.UserRoleRepository
	policy     *auth.RolePolicy
	sessions   auth.SessionStore
	jwtService *auth.JWTService
}

// NewIdentityService creates a new identity service.
func NewIdentityService(roles repository.UserRoleRepository, policy *auth.RolePolicy, sessions auth.SessionStore, jwtService *auth.JWTService) IdentityService {
	return &identityService{
		roles:      roles,
		policy:     policy,
		sessions:   sessions,
		jwtService: jwtService,
	}
}

func (s *identityService) Login(ctx context.Context, username, password string) (*auth.Session, string, error) {
	if username == "" || password == "" {
		return nil, "", apperrors.NewValidationError("Please enter both username and password")
	}

	identity := model.Identity{Username: username, Role: s.policy.RoleFor(username)}
	if err := s.roles.Upsert(ctx, identity.Username, identity.Role); err != nil {
		return nil, "", fmt.Errorf("record role: %w", err)
	}

	session := &auth.Session{
		ID:        auth.NewSessionID(),
		Identity:  identity,
		CreatedAt: time.Now().UTC(),
		Solved:    map[string]bool{},
	}
	if err := s.sessions.Create(ctx, session, auth.SessionExpiry); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(session.ID, identity)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, "", fmt.Errorf("sign session: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "username", identity.Username, "role", string(identity.Role))
	return session, token, nil
}

func (s *identityService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
