package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/pkg/logger"
)

// UserService lists the user directory. The listing is admin-facing;
// the presentation layer gates access by role.
type UserService struct {
	api UserAPI
	log *logger.Logger
}

func NewUserService(api UserAPI, log *logger.Logger) *UserService {
	return &UserService{api: api, log: log}
}

// ListUsers fetches the full user directory.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.api.GetUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// FilterUsers narrows a user list by a case-insensitive substring match
// on the full name. The input slice is never mutated.
func FilterUsers(users []models.User, query string) []models.User {
	if query == "" {
		out := make([]models.User, len(users))
		copy(out, users)
		return out
	}

	q := strings.ToLower(query)
	out := make([]models.User, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.FullName), q) {
			out = append(out, user)
		}
	}
	return out
}
