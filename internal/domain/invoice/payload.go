package invoice

import (
	"strings"
	"time"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/compliance"
	"github.com/jhoicas/invoice-builder/pkg/currency"
)

// BuildPayload arma el resumen fiscal con los totales actuales. No guarda estado:
// se vuelve a llamar cada vez que cambian vendedor, fecha o totales.
// Los montos se fijan a la precisión de la moneda (2 decimales para SAR/USD).
func BuildPayload(header entity.InvoiceHeader, totals entity.InvoiceTotals) entity.CompliancePayload {
	scale := currency.Scale(header.Currency)
	return entity.CompliancePayload{
		SellerName:  strings.TrimSpace(header.Seller.Name),
		SellerTaxID: strings.TrimSpace(header.Seller.TaxID),
		IssueDate:   header.Date,
		GrandTotal:  totals.GrandTotal.Round(scale).StringFixed(scale),
		TaxAmount:   totals.TaxAmount.Round(scale).StringFixed(scale),
	}
}

// PayloadText serializa el resumen al texto TLV/Base64 que va dentro del QR.
// Falla si faltan vendedor o registro fiscal, o si algún valor no cabe en el TLV.
func PayloadText(p entity.CompliancePayload) (string, error) {
	ts := ""
	if !p.IssueDate.IsZero() {
		ts = p.IssueDate.UTC().Format(time.RFC3339)
	}
	return compliance.EncodeTLV(compliance.Fields{
		SellerName:  p.SellerName,
		SellerTaxID: p.SellerTaxID,
		Timestamp:   ts,
		GrandTotal:  p.GrandTotal,
		TaxAmount:   p.TaxAmount,
	})
}
