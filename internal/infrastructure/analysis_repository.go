package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"margemreal/internal/domain"
	"margemreal/pkg/logger"
)

const analysisKeyPrefix = "ifood-analyses-"

// AnalysisRepository stores each tenant's analyses as one JSON array blob in
// the key-value store, read-modify-written as a whole. A missing, corrupt or
// mis-shaped blob is treated as an empty collection.
type AnalysisRepository struct {
	store  domain.KeyValueStore
	logger *logger.Logger
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(store domain.KeyValueStore, logger *logger.Logger) *AnalysisRepository {
	return &AnalysisRepository{
		store:  store,
		logger: logger,
	}
}

func analysisKey(tenantID string) string {
	return analysisKeyPrefix + tenantID
}

func (r *AnalysisRepository) load(ctx context.Context, tenantID string) []domain.AnalysisData {
	raw, ok := r.store.Read(ctx, analysisKey(tenantID))
	if !ok {
		return nil
	}

	var analyses []domain.AnalysisData
	if err := json.Unmarshal([]byte(raw), &analyses); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("tenant_id", tenantID).
			Warn("Discarding corrupt analysis blob")
		return nil
	}
	return analyses
}

func (r *AnalysisRepository) persist(ctx context.Context, tenantID string, analyses []domain.AnalysisData) error {
	raw, err := json.Marshal(analyses)
	if err != nil {
		return fmt.Errorf("failed to encode analyses: %w", err)
	}
	if err := r.store.Write(ctx, analysisKey(tenantID), string(raw)); err != nil {
		return fmt.Errorf("failed to persist analyses: %w", err)
	}
	return nil
}

// Save appends the analysis to its tenant's collection.
func (r *AnalysisRepository) Save(ctx context.Context, analysis domain.AnalysisData) error {
	analyses := r.load(ctx, analysis.TenantID)
	analyses = append(analyses, analysis)
	return r.persist(ctx, analysis.TenantID, analyses)
}

// ListByTenant returns the tenant's analyses in storage order.
func (r *AnalysisRepository) ListByTenant(ctx context.Context, tenantID string) []domain.AnalysisData {
	return r.load(ctx, tenantID)
}

// FindByPeriod returns the analyses whose periodo contains the given
// substring, case-sensitive.
func (r *AnalysisRepository) FindByPeriod(ctx context.Context, tenantID, contains string) []domain.AnalysisData {
	var matched []domain.AnalysisData
	for _, analysis := range r.load(ctx, tenantID) {
		if strings.Contains(analysis.FormData.Periodo, contains) {
			matched = append(matched, analysis)
		}
	}
	return matched
}

// DeleteByID rewrites the collection without the given analysis. Unknown IDs
// leave the collection unchanged.
func (r *AnalysisRepository) DeleteByID(ctx context.Context, tenantID, id string) error {
	analyses := r.load(ctx, tenantID)

	kept := analyses[:0]
	for _, analysis := range analyses {
		if analysis.ID != id {
			kept = append(kept, analysis)
		}
	}
	if len(kept) == len(analyses) {
		return nil
	}
	return r.persist(ctx, tenantID, kept)
}
