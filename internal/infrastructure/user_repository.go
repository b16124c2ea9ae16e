package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"margemreal/internal/domain"
	"margemreal/pkg/logger"
)

const userKey = "ifood-user"

// UserRepository keeps the single session user under a fixed key, mirroring
// the one-browser-one-user session model.
type UserRepository struct {
	store  domain.KeyValueStore
	logger *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store domain.KeyValueStore, logger *logger.Logger) *UserRepository {
	return &UserRepository{
		store:  store,
		logger: logger,
	}
}

// Save stores the session user, replacing any previous one.
func (r *UserRepository) Save(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := r.store.Write(ctx, userKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// Current returns the stored session user. A missing or corrupt blob reports
// absence.
func (r *UserRepository) Current(ctx context.Context) (*domain.User, bool) {
	raw, ok := r.store.Read(ctx, userKey)
	if !ok {
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("Discarding corrupt user blob")
		return nil, false
	}
	return &user, true
}

// Clear removes the session user, leaving saved analyses untouched.
func (r *UserRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, userKey); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return nil
}
