package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingCredentials = errors.New("username and password are required")

// SessionService is the single source of truth for the current user and
// their role. Role is resolved here and nowhere else: the server's user
// payload wins, with the token's claims as the only fallback.
type SessionService struct {
	auth        AuthAPI
	tokens      TokenStore
	deviceToken string
	log         *logger.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewSessionService creates the session gate. deviceToken is forwarded
// to the auth endpoint on login so the server can target push messages.
func NewSessionService(auth AuthAPI, tokens TokenStore, deviceToken string, log *logger.Logger) *SessionService {
	return &SessionService{
		auth:        auth,
		tokens:      tokens,
		deviceToken: deviceToken,
		log:         log,
	}
}

// Login authenticates against the remote auth endpoint and persists the
// returned token under the single storage key.
func (s *SessionService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	result, err := s.auth.Login(ctx, LoginRequest{
		Username:    username,
		Password:    password,
		DeviceToken: s.deviceToken,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.tokens.Save(result.Token); err != nil {
		return nil, fmt.Errorf("failed to persist auth token: %w", err)
	}

	user := result.User
	user.Role = s.resolveRole(user.Role, result.Token)

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.log.Info("logged in", "username", user.Username, "role", user.Role)
	return s.CurrentUser(), nil
}

// Restore bootstraps the session from a previously stored token. Any
// failure is treated as "no session": nil user, nil error, never fatal.
func (s *SessionService) Restore(ctx context.Context) (*models.User, error) {
	token, err := s.tokens.Load()
	if err != nil {
		s.log.Warn("failed to read stored token", "error", err)
		return nil, nil
	}
	if token == "" {
		return nil, nil
	}

	user, err := s.auth.GetSession(ctx, token)
	if err != nil {
		s.log.Warn("session bootstrap failed, treating as signed out", "error", err)
		return nil, nil
	}

	restored := *user
	restored.Role = s.resolveRole(restored.Role, token)

	s.mu.Lock()
	s.user = &restored
	s.mu.Unlock()
	return s.CurrentUser(), nil
}

// Logout ends the remote session (best effort) and removes the stored
// token.
func (s *SessionService) Logout(ctx context.Context) error {
	token, _ := s.tokens.Load()
	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.log.Warn("remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}
	return nil
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *SessionService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Role returns the current user's role, or "" when signed out.
func (s *SessionService) Role() models.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// resolveRole picks the role from the server payload when present and
// valid, falling back to the role claim baked into the token. The token
// is not verified here; the server already authenticated it and the
// claim is advisory display state only.
func (s *SessionService) resolveRole(fromServer models.UserRole, token string) models.UserRole {
	normalized := models.UserRole(strings.ToLower(string(fromServer)))
	if normalized.Valid() {
		return normalized
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.log.Debug("token claims unavailable for role fallback", "error", err)
		return normalized
	}
	if claim, ok := claims["role"].(string); ok {
		fallback := models.UserRole(strings.ToLower(claim))
		if fallback.Valid() {
			return fallback
		}
	}
	return normalized
}
