package usecase

import (
	"margemreal/internal/domain"
)

// Synthetic field for errors about the derived revenue base rather than a
// single input.
const FieldBase = "base"

// ValidateFormData checks the business rules over the four core amounts.
// All rules are evaluated; errors accumulate in rule order and never
// short-circuit. Warnings do not affect validity.
func ValidateFormData(data domain.FormData) domain.ValidationResult {
	var errors []domain.ValidationError
	var warnings []string

	vbv := finite(data.Vbv)
	valoresPagosCliente := finite(data.ValoresPagosCliente)
	vrl := finite(data.Vrl)
	vrlj := finite(data.Vrlj)

	rbr := vbv - valoresPagosCliente
	rol := vrl + vrlj

	if vbv <= 0 {
		errors = append(errors, domain.ValidationError{
			Field:   "vbv",
			Message: "VBV deve ser maior que zero.",
		})
	}
	if valoresPagosCliente < 0 {
		errors = append(errors, domain.ValidationError{
			Field:   "valoresPagosCliente",
			Message: "Valores pagos pelo cliente não pode ser negativo.",
		})
	}
	if rbr <= 0 {
		errors = append(errors, domain.ValidationError{
			Field:   FieldBase,
			Message: "Receita Bruta Real (VBV - valores pagos) deve ser positiva.",
		})
	}
	if rol > rbr {
		warnings = append(warnings, "ROL maior do que a Receita Bruta Real. Revise os números.")
	}

	return domain.ValidationResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}
