package service

import (
	"github.com/IagoMorais/sistema-venda/internal/apierror"
	"github.com/IagoMorais/sistema-venda/internal/dto"

	"github.com/shopspring/decimal"
)

// normalizeAmount turns a flexible numeric input into a canonical non-negative
// decimal with two fraction digits. Field-level failures carry the field name
// so the client knows what to fix.
func normalizeAmount(field string, n dto.Numeric) (decimal.Decimal, error) {
	if !n.Present || n.Empty {
		return decimal.Zero, apierror.Validationf(field, "%s é obrigatório", field)
	}
	if !n.Valid {
		return decimal.Zero, apierror.Validationf(field, "%s inválido", field)
	}
	if n.Value.IsNegative() {
		return decimal.Zero, apierror.Validationf(field, "%s deve ser maior ou igual a zero", field)
	}
	return n.Value.Round(2), nil
}

// normalizeCount is normalizeAmount plus an integrality requirement, for stock
// counters.
func normalizeCount(field string, n dto.Numeric) (int, error) {
	if !n.Present || n.Empty {
		return 0, apierror.Validationf(field, "%s é obrigatório", field)
	}
	if !n.Valid {
		return 0, apierror.Validationf(field, "%s inválido", field)
	}
	if n.Value.IsNegative() {
		return 0, apierror.Validationf(field, "%s deve ser maior ou igual a zero", field)
	}
	if !n.Value.IsInteger() {
		return 0, apierror.Validationf(field, "%s deve ser um número inteiro", field)
	}
	return int(n.Value.IntPart()), nil
}
