package usecase

import (
	"fmt"
	"math"
	"time"

	"margemreal/internal/domain"
	"margemreal/pkg/money"
)

// finite coerces any non-finite amount to zero so every formula below is
// total over its inputs.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CalculateMetrics derives the five KPIs from the four core amounts.
// Pure and deterministic; divisions are guarded so it never fails.
//
//	RBR = VBV - valores pagos pelo cliente
//	ROL = VRL + VRLJ
func CalculateMetrics(data domain.FormData) domain.CalculatedData {
	vbv := finite(data.Vbv)
	valoresPagosCliente := finite(data.ValoresPagosCliente)
	vrl := finite(data.Vrl)
	vrlj := finite(data.Vrlj)

	rbr := vbv - valoresPagosCliente
	rol := vrl + vrlj

	rentabilidadeLiquida := 0.0
	if rbr > 0 {
		rentabilidadeLiquida = (rol / rbr) * 100
	}

	return domain.CalculatedData{
		Rbr:                     rbr,
		Rol:                     rol,
		RentabilidadeLiquida:    rentabilidadeLiquida,
		RetencaoIfoodPercentual: 100 - rentabilidadeLiquida,
		ValorRetidoIfood:        rbr - rol,
	}
}

// CalculateDetailed breaks the RBR down into the four debit categories from
// AdditionalValues. Percentages are zero when RBR is not positive;
// rbrPosDebitos is deliberately not clamped at zero.
func CalculateDetailed(data domain.FormData, rbr float64) domain.DetailedAnalysisData {
	category := func(name string) float64 {
		return finite(data.AdditionalValues[name])
	}

	promocoes := category("promocoes")
	taxasComissoes := category("taxasComissoes")
	servicosLogisticos := category("servicosLogisticos")
	outrosValores := category("outrosValores")

	debitosDetalhados := promocoes + taxasComissoes + servicosLogisticos + outrosValores
	rbrPosDebitos := rbr - debitosDetalhados
	repasseLiquidoReal := rbrPosDebitos + finite(data.Vrlj)

	percent := func(v float64) float64 {
		if rbr > 0 {
			return (v / rbr) * 100
		}
		return 0
	}

	return domain.DetailedAnalysisData{
		Promocoes:          promocoes,
		TaxasComissoes:     taxasComissoes,
		ServicosLogisticos: servicosLogisticos,
		OutrosValores:      outrosValores,
		DebitosDetalhados:  debitosDetalhados,
		RbrPosDebitos:      rbrPosDebitos,
		RepasseLiquidoReal: repasseLiquidoReal,
		Percentuais: domain.Percentuais{
			Promocoes:          percent(promocoes),
			TaxasComissoes:     percent(taxasComissoes),
			ServicosLogisticos: percent(servicosLogisticos),
			OutrosValores:      percent(outrosValores),
			TotalDebitos:       percent(debitosDetalhados),
		},
	}
}

// ResultMessages renders the dashboard summary sentences for a calculation.
func ResultMessages(calc domain.CalculatedData) []string {
	return []string{
		fmt.Sprintf("Sua RBR foi %s.", money.FormatCurrency(calc.Rbr)),
		fmt.Sprintf("Seu ROL foi %s.", money.FormatCurrency(calc.Rol)),
		fmt.Sprintf("Rentabilidade líquida: %s.", money.FormatPercentage(calc.RentabilidadeLiquida)),
		fmt.Sprintf("Retenção iFood: %s (%s).", money.FormatPercentage(calc.RetencaoIfoodPercentual), money.FormatCurrency(calc.ValorRetidoIfood)),
	}
}

// ExampleFormData returns the sample data set used to pre-fill the form.
func ExampleFormData(tenantID string) domain.FormData {
	return domain.FormData{
		Vbv:                 100000,
		ValoresPagosCliente: 4000,
		Vrl:                 70000,
		Vrlj:                5000,
		AdditionalValues:    map[string]float64{},
		Periodo:             time.Now().Format("2006-01"),
		TenantID:            tenantID,
	}
}
