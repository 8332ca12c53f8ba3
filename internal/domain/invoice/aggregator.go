package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// ComputeSubtotal suma los montos de las líneas. Sin líneas → 0.
func ComputeSubtotal(items []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// ComputeDiscount subtotal × descuento / 100, con el porcentaje recortado a [0,100].
func ComputeDiscount(subtotal, discountRate decimal.Decimal) decimal.Decimal {
	return percentOf(subtotal, ClampRate(discountRate))
}

// ComputeTax base gravable × impuesto / 100, con el porcentaje recortado a [0,100].
func ComputeTax(taxableBase, taxRate decimal.Decimal) decimal.Decimal {
	return percentOf(taxableBase, ClampRate(taxRate))
}

// ComputeTotal subtotal − descuento + impuesto.
func ComputeTotal(subtotal, discount, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(tax)
}

// RecomputeTotals calcula todos los totales juntos a partir de las líneas y los
// porcentajes. Función pura, O(n); se puede llamar en cada tecla.
func RecomputeTotals(items []entity.LineItem, rates entity.RateParameters) entity.InvoiceTotals {
	subtotal := ComputeSubtotal(items)
	discount := ComputeDiscount(subtotal, rates.DiscountRate)
	base := subtotal.Sub(discount)
	tax := ComputeTax(base, rates.TaxRate)
	return entity.InvoiceTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableBase:    base,
		TaxAmount:      tax,
		GrandTotal:     ComputeTotal(subtotal, discount, tax),
	}
}

// percentOf x × rate / 100. Shift(-2) divide por 100 sin perder precisión.
func percentOf(x, rate decimal.Decimal) decimal.Decimal {
	return x.Mul(rate).Shift(-2)
}
