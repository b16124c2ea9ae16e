package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"margemreal/internal/domain"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"

	"github.com/google/uuid"
)

// ErrMissingCredentials is the only way the login simulation fails.
var ErrMissingCredentials = errors.New("email e senha são obrigatórios")

// AuthService implements the local login simulation: any non-empty
// email/password pair succeeds and the resulting user is persisted under a
// fixed key so the session survives restarts.
type AuthService struct {
	users         domain.UserRepository
	defaultTenant string
	loginDelay    time.Duration
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

// NewAuthService creates a new auth service
func NewAuthService(
	users domain.UserRepository,
	defaultTenant string,
	loginDelay time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *AuthService {
	return &AuthService{
		users:         users,
		defaultTenant: defaultTenant,
		loginDelay:    loginDelay,
		logger:        logger,
		metrics:       metrics,
	}
}

// Login checks only that both fields are non-empty, waits the simulated
// latency of the original login stub, then builds and stores the user.
func (s *AuthService) Login(ctx context.Context, email, password, tenantID string) (*domain.User, error) {
	log := s.logger.WithContext(ctx)

	if email == "" || password == "" {
		s.metrics.RecordLogin("rejected")
		return nil, ErrMissingCredentials
	}

	if s.loginDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.loginDelay):
		}
	}

	if tenantID == "" {
		tenantID = s.defaultTenant
	}

	user := domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.Split(email, "@")[0],
		TenantID:  tenantID,
		Role:      domain.RoleOwner,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Save(ctx, user); err != nil {
		s.metrics.RecordLogin("error")
		log.WithError(err).Error("Failed to persist session user")
		return nil, fmt.Errorf("failed to persist session user: %w", err)
	}

	s.metrics.RecordLogin("success")
	log.WithFields(map[string]any{
		"user_id":   user.ID,
		"tenant_id": user.TenantID,
	}).Info("User logged in")

	return &user, nil
}

// CurrentUser returns the stored session user, if any.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, bool) {
	return s.users.Current(ctx)
}

// Logout removes the session user. Saved analyses are untouched.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.users.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session user: %w", err)
	}
	s.logger.WithContext(ctx).Info("User logged out")
	return nil
}
