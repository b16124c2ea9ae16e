package usecase

import (
	"testing"

	"margemreal/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidateFormData(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		result := ValidateFormData(domain.FormData{
			Vbv: 100000, ValoresPagosCliente: 4000, Vrl: 70000, Vrlj: 5000,
		})

		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("zero form collects vbv and base errors", func(t *testing.T) {
		result := ValidateFormData(domain.FormData{})

		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
		assert.Equal(t, "vbv", result.Errors[0].Field)
		assert.Equal(t, "VBV deve ser maior que zero.", result.Errors[0].Message)
		assert.Equal(t, FieldBase, result.Errors[1].Field)
	})

	t.Run("negative valores pagos", func(t *testing.T) {
		result := ValidateFormData(domain.FormData{
			Vbv: 1000, ValoresPagosCliente: -50, Vrl: 100,
		})

		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "valoresPagosCliente", result.Errors[0].Field)
	})

	t.Run("rol above rbr warns without blocking", func(t *testing.T) {
		result := ValidateFormData(domain.FormData{
			Vbv: 1000, ValoresPagosCliente: 100, Vrl: 2000,
		})

		assert.True(t, result.IsValid)
		assert.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "Revise os números")
	})

	t.Run("errors accumulate in rule order", func(t *testing.T) {
		result := ValidateFormData(domain.FormData{
			Vbv: -10, ValoresPagosCliente: -5,
		})

		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 3)
		assert.Equal(t, "vbv", result.Errors[0].Field)
		assert.Equal(t, "valoresPagosCliente", result.Errors[1].Field)
		assert.Equal(t, FieldBase, result.Errors[2].Field)
	})
}
