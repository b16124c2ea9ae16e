package domain

import (
	"time"
)

// Raw form input for one analysis period. The four core amounts arrive
// already normalized to floats; AdditionalValues carries the detailed
// breakdown categories keyed by field name.
type FormData struct {
	Vbv                 float64            `json:"vbv"`
	ValoresPagosCliente float64            `json:"valoresPagosCliente"`
	Vrl                 float64            `json:"vrl"`
	Vrlj                float64            `json:"vrlj"`
	AdditionalValues    map[string]float64 `json:"additionalValues"`
	Periodo             string             `json:"periodo"`
	TenantID            string             `json:"tenantId"`
}

// Derived KPIs. Never persisted apart from the FormData that produced them.
type CalculatedData struct {
	Rbr                     float64               `json:"rbr"`
	Rol                     float64               `json:"rol"`
	RentabilidadeLiquida    float64               `json:"rentabilidadeLiquida"`
	RetencaoIfoodPercentual float64               `json:"retencaoIfoodPercentual"`
	ValorRetidoIfood        float64               `json:"valorRetidoIfood"`
	DetailedAnalysis        *DetailedAnalysisData `json:"detailedAnalysis,omitempty"`
}

// Secondary debit breakdown derived from FormData.AdditionalValues and RBR.
type DetailedAnalysisData struct {
	Promocoes          float64     `json:"promocoes"`
	TaxasComissoes     float64     `json:"taxasComissoes"`
	ServicosLogisticos float64     `json:"servicosLogisticos"`
	OutrosValores      float64     `json:"outrosValores"`
	DebitosDetalhados  float64     `json:"debitosDetalhados"`
	RbrPosDebitos      float64     `json:"rbrPosDebitos"`
	RepasseLiquidoReal float64     `json:"repasseLiquidoReal"`
	Percentuais        Percentuais `json:"percentuais"`
}

// Each category and the total as a share of RBR, in 0-100 units.
type Percentuais struct {
	Promocoes          float64 `json:"promocoes"`
	TaxasComissoes     float64 `json:"taxasComissoes"`
	ServicosLogisticos float64 `json:"servicosLogisticos"`
	OutrosValores      float64 `json:"outrosValores"`
	TotalDebitos       float64 `json:"totalDebitos"`
}

// A saved snapshot pairing raw inputs with derived KPIs for a stated period.
// Immutable once created; deleted individually by ID, never updated in place.
type AnalysisData struct {
	ID             string         `json:"id"`
	FormData       FormData       `json:"formData"`
	CalculatedData CalculatedData `json:"calculatedData"`
	Timestamp      time.Time      `json:"timestamp"`
	UserID         string         `json:"userId"`
	TenantID       string         `json:"tenantId"`
}

// Structured validation outcome. Warnings never affect validity.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// One CSV export row per saved analysis; detailed-analysis fields default
// to zero when the snapshot carries no breakdown.
type ExportRow struct {
	Periodo                      string  `json:"periodo"`
	Vbv                          float64 `json:"vbv"`
	ValoresPagosCliente          float64 `json:"valoresPagosCliente"`
	Rbr                          float64 `json:"rbr"`
	Vrl                          float64 `json:"vrl"`
	Vrlj                         float64 `json:"vrlj"`
	Rol                          float64 `json:"rol"`
	RentabilidadeLiquida         float64 `json:"rentabilidadeLiquida"`
	RetencaoIfoodPercentual      float64 `json:"retencaoIfoodPercentual"`
	ValorRetidoIfood             float64 `json:"valorRetidoIfood"`
	Promocoes                    float64 `json:"promocoes"`
	TaxasComissoes               float64 `json:"taxasComissoes"`
	ServicosLogisticos           float64 `json:"servicosLogisticos"`
	OutrosValores                float64 `json:"outrosValores"`
	DebitosDetalhados            float64 `json:"debitosDetalhados"`
	RbrPosDebitos                float64 `json:"rbrPosDebitos"`
	RepasseLiquidoReal           float64 `json:"repasseLiquidoReal"`
	PercentualPromocoes          float64 `json:"percentualPromocoes"`
	PercentualTaxasComissoes     float64 `json:"percentualTaxasComissoes"`
	PercentualServicosLogisticos float64 `json:"percentualServicosLogisticos"`
	PercentualOutrosValores      float64 `json:"percentualOutrosValores"`
	PercentualTotalDebitos       float64 `json:"percentualTotalDebitos"`
}
