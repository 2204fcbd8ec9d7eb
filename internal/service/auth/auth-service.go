package auth

import (
	"fmt"

	"ClipRate/entity"
	"ClipRate/internal/config"
	"ClipRate/internal/lib/sl"

	"log/slog"
)

// Repository defines the database operations for API authentication.
type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)
}

// Service answers the two authorization questions in the system: is this
// Telegram user an admin, and which principal does this API token belong
// to. The admin set comes from configuration only; there is no in-process
// mutation of it.
type Service struct {
	repository Repository
	adminIds   map[int64]struct{}
	log        *slog.Logger
}

// NewAuthService creates the auth service with the admin ids from config.
func NewAuthService(conf *config.Config, logger *slog.Logger) *Service {
	adminIds := make(map[int64]struct{}, len(conf.Telegram.AdminIds))
	for _, id := range conf.Telegram.AdminIds {
		adminIds[id] = struct{}{}
	}
	return &Service{
		adminIds: adminIds,
		log:      logger.With(sl.Module("auth-service")),
	}
}

// SetRepository sets the api-key repository.
func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// IsAdmin reports whether the Telegram user may run privileged commands.
func (s *Service) IsAdmin(telegramId int64) bool {
	_, ok := s.adminIds[telegramId]
	return ok
}

// AuthenticateByToken resolves an API token to its principal.
func (s *Service) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if s.repository == nil {
		return nil, fmt.Errorf("auth repository not configured")
	}

	username, err := s.repository.CheckApiKey(token)
	if err != nil {
		return nil, fmt.Errorf("checking api key: %w", err)
	}

	return &entity.UserAuth{
		Username: username,
		Token:    token,
	}, nil
}

// ValidateToken resolves an API token to a username. Satisfies the
// websocket hub's Authenticator.
func (s *Service) ValidateToken(token string) (string, error) {
	user, err := s.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GenerateApiKey creates (or returns the existing) API key for a username.
func (s *Service) GenerateApiKey(username string) (string, error) {
	if s.repository == nil {
		return "", fmt.Errorf("auth repository not configured")
	}
	return s.repository.GenerateApiKey(username)
}
