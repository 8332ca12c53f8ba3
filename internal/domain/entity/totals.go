package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateParameters porcentajes de descuento e impuesto, en [0,100].
type RateParameters struct {
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

// InvoiceTotals totales derivados; nunca se guardan por separado.
// Los montos no se redondean: el redondeo a la unidad menor ocurre al formatear.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// CompliancePayload resumen mínimo para verificación por la autoridad tributaria.
// Los montos ya vienen con precisión fija (string).
type CompliancePayload struct {
	SellerName  string
	SellerTaxID string
	IssueDate   time.Time
	GrandTotal  string
	TaxAmount   string
}

// Equal compara dos resúmenes campo a campo.
func (p CompliancePayload) Equal(o CompliancePayload) bool {
	return p.SellerName == o.SellerName &&
		p.SellerTaxID == o.SellerTaxID &&
		p.IssueDate.Equal(o.IssueDate) &&
		p.GrandTotal == o.GrandTotal &&
		p.TaxAmount == o.TaxAmount
}
