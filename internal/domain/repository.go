package domain

import (
	"context"
)

// Durable key-value port backing all persistence. Read reports absence via
// the bool; implementations degrade unreadable entries to absent rather
// than failing.
type KeyValueStore interface {
	Read(ctx context.Context, key string) (string, bool)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Append-only, tenant-partitioned collection of saved analyses.
type AnalysisRepository interface {
	Save(ctx context.Context, analysis AnalysisData) error
	ListByTenant(ctx context.Context, tenantID string) []AnalysisData
	FindByPeriod(ctx context.Context, tenantID, contains string) []AnalysisData
	DeleteByID(ctx context.Context, tenantID, id string) error
}

// Single-record store for the current session user.
type UserRepository interface {
	Save(ctx context.Context, user User) error
	Current(ctx context.Context) (*User, bool)
	Clear(ctx context.Context) error
}
