package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"margemreal/internal/domain"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"

	"github.com/google/uuid"
)

// ErrNoAnalyses is returned by ExportCSV when the tenant has nothing saved.
var ErrNoAnalyses = errors.New("nenhuma análise salva para exportar")

// CalculationResult pairs the validation outcome with the derived KPIs.
// Calculated is nil when validation failed.
type CalculationResult struct {
	Validation domain.ValidationResult `json:"validation"`
	Calculated *domain.CalculatedData  `json:"calculated,omitempty"`
	Messages   []string                `json:"messages,omitempty"`
}

// AnalysisService owns the calculate/save/list/delete/export commands over
// the tenant's analysis collection.
type AnalysisService struct {
	analyses domain.AnalysisRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	analyses domain.AnalysisRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *AnalysisService {
	return &AnalysisService{
		analyses: analyses,
		logger:   logger,
		metrics:  metrics,
	}
}

// Calculate validates the form and, when valid, derives the KPIs. The
// detailed breakdown is attached whenever additional values are present.
func (s *AnalysisService) Calculate(ctx context.Context, data domain.FormData) CalculationResult {
	log := s.logger.WithContext(ctx)

	validation := ValidateFormData(data)
	if !validation.IsValid {
		for _, e := range validation.Errors {
			s.metrics.RecordValidationError(e.Field)
		}
		s.metrics.RecordCalculation("invalid")
		log.WithField("errors", len(validation.Errors)).Info("Form validation failed")
		return CalculationResult{Validation: validation}
	}

	calc := CalculateMetrics(data)
	if len(data.AdditionalValues) > 0 {
		detailed := CalculateDetailed(data, calc.Rbr)
		calc.DetailedAnalysis = &detailed
	}

	s.metrics.RecordCalculation("success")
	log.WithFields(map[string]any{
		"tenant_id": data.TenantID,
		"rbr":       calc.Rbr,
		"rol":       calc.Rol,
	}).Info("Metrics calculated")

	return CalculationResult{
		Validation: validation,
		Calculated: &calc,
		Messages:   ResultMessages(calc),
	}
}

// Save validates, recalculates and persists a snapshot. The periodo is
// rewritten to the "<start> até <end>" range the user picked at save time.
// A nil AnalysisData with a failed ValidationResult means nothing was saved.
func (s *AnalysisService) Save(ctx context.Context, data domain.FormData, startDate, endDate, userID string) (*domain.AnalysisData, domain.ValidationResult, error) {
	log := s.logger.WithContext(ctx)

	validation := ValidateFormData(data)
	if !validation.IsValid {
		for _, e := range validation.Errors {
			s.metrics.RecordValidationError(e.Field)
		}
		log.WithField("errors", len(validation.Errors)).Info("Refusing to save invalid form")
		return nil, validation, nil
	}

	calc := CalculateMetrics(data)
	if len(data.AdditionalValues) > 0 {
		detailed := CalculateDetailed(data, calc.Rbr)
		calc.DetailedAnalysis = &detailed
	}

	if startDate != "" && endDate != "" {
		data.Periodo = fmt.Sprintf("%s até %s", startDate, endDate)
	}

	analysis := domain.AnalysisData{
		ID:             uuid.New().String(),
		FormData:       data,
		CalculatedData: calc,
		Timestamp:      time.Now().UTC(),
		UserID:         userID,
		TenantID:       data.TenantID,
	}

	if err := s.analyses.Save(ctx, analysis); err != nil {
		log.WithError(err).Error("Failed to save analysis")
		return nil, validation, fmt.Errorf("failed to save analysis: %w", err)
	}

	s.metrics.AnalysesSavedTotal.Inc()
	log.WithFields(map[string]any{
		"analysis_id": analysis.ID,
		"tenant_id":   analysis.TenantID,
		"periodo":     data.Periodo,
	}).Info("Analysis saved")

	return &analysis, validation, nil
}

// List returns the tenant's saved analyses in storage order.
func (s *AnalysisService) List(ctx context.Context, tenantID string) []domain.AnalysisData {
	return s.analyses.ListByTenant(ctx, tenantID)
}

// FindByPeriod filters the tenant's analyses by a case-sensitive periodo
// substring.
func (s *AnalysisService) FindByPeriod(ctx context.Context, tenantID, contains string) []domain.AnalysisData {
	return s.analyses.FindByPeriod(ctx, tenantID, contains)
}

// Delete removes one analysis by ID. Deleting an unknown ID is a no-op.
func (s *AnalysisService) Delete(ctx context.Context, tenantID, id string) error {
	log := s.logger.WithContext(ctx)

	if err := s.analyses.DeleteByID(ctx, tenantID, id); err != nil {
		log.WithError(err).Error("Failed to delete analysis")
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	s.metrics.AnalysesDeletedTotal.Inc()
	log.WithFields(map[string]any{
		"analysis_id": id,
		"tenant_id":   tenantID,
	}).Info("Analysis deleted")
	return nil
}

// ExportCSV renders the tenant's analyses as semicolon-separated text in
// storage order, detailed-analysis columns defaulting to zero.
func (s *AnalysisService) ExportCSV(ctx context.Context, tenantID string) ([]byte, error) {
	log := s.logger.WithContext(ctx)

	analyses := s.analyses.ListByTenant(ctx, tenantID)
	if len(analyses) == 0 {
		return nil, ErrNoAnalyses
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Semicolon keeps rows unambiguous: formatted pt-BR numbers carry commas
	// and the fields are not quoted.
	w.Comma = ';'

	header := []string{
		"periodo", "vbv", "valoresPagosCliente", "rbr", "vrl", "vrlj", "rol",
		"rentabilidadeLiquida", "retencaoIfoodPercentual", "valorRetidoIfood",
		"promocoes", "taxasComissoes", "servicosLogisticos", "outrosValores",
		"debitosDetalhados", "rbrPosDebitos", "repasseLiquidoReal",
		"percentualPromocoes", "percentualTaxasComissoes",
		"percentualServicosLogisticos", "percentualOutrosValores",
		"percentualTotalDebitos",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for _, analysis := range analyses {
		row := exportRow(analysis)
		record := []string{
			row.Periodo,
			num(row.Vbv), num(row.ValoresPagosCliente), num(row.Rbr),
			num(row.Vrl), num(row.Vrlj), num(row.Rol),
			num(row.RentabilidadeLiquida), num(row.RetencaoIfoodPercentual), num(row.ValorRetidoIfood),
			num(row.Promocoes), num(row.TaxasComissoes), num(row.ServicosLogisticos), num(row.OutrosValores),
			num(row.DebitosDetalhados), num(row.RbrPosDebitos), num(row.RepasseLiquidoReal),
			num(row.PercentualPromocoes), num(row.PercentualTaxasComissoes),
			num(row.PercentualServicosLogisticos), num(row.PercentualOutrosValores),
			num(row.PercentualTotalDebitos),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}

	s.metrics.ExportsTotal.Inc()
	log.WithFields(map[string]any{
		"tenant_id": tenantID,
		"records":   len(analyses),
	}).Info("CSV export generated")

	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func exportRow(analysis domain.AnalysisData) domain.ExportRow {
	form := analysis.FormData
	calc := analysis.CalculatedData

	row := domain.ExportRow{
		Periodo:                 form.Periodo,
		Vbv:                     form.Vbv,
		ValoresPagosCliente:     form.ValoresPagosCliente,
		Rbr:                     calc.Rbr,
		Vrl:                     form.Vrl,
		Vrlj:                    form.Vrlj,
		Rol:                     calc.Rol,
		RentabilidadeLiquida:    calc.RentabilidadeLiquida,
		RetencaoIfoodPercentual: calc.RetencaoIfoodPercentual,
		ValorRetidoIfood:        calc.ValorRetidoIfood,
		Promocoes:               form.AdditionalValues["promocoes"],
		TaxasComissoes:          form.AdditionalValues["taxasComissoes"],
		ServicosLogisticos:      form.AdditionalValues["servicosLogisticos"],
		OutrosValores:           form.AdditionalValues["outrosValores"],
	}

	if detailed := calc.DetailedAnalysis; detailed != nil {
		row.DebitosDetalhados = detailed.DebitosDetalhados
		row.RbrPosDebitos = detailed.RbrPosDebitos
		row.RepasseLiquidoReal = detailed.RepasseLiquidoReal
		row.PercentualPromocoes = detailed.Percentuais.Promocoes
		row.PercentualTaxasComissoes = detailed.Percentuais.TaxasComissoes
		row.PercentualServicosLogisticos = detailed.Percentuais.ServicosLogisticos
		row.PercentualOutrosValores = detailed.Percentuais.OutrosValores
		row.PercentualTotalDebitos = detailed.Percentuais.TotalDebitos
	}

	return row
}
