package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/qrcode"
)

func sampleDraft() entity.Draft {
	return entity.Draft{
		Header: entity.InvoiceHeader{
			InvoiceNumber: "INV-0001",
			PurchaseOrder: "PO-9",
			Date:          time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			DueDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			Currency:      "SAR",
			Seller:        entity.Party{Name: "Acme Engineering", TaxID: "300000000000003", Address: "King Fahd Rd"},
			Buyer:         entity.Party{Name: "Globex LLC", Email: "ap@globex.test"},
			Notes:         "Pago a 30 días.",
			Bank:          entity.BankDetails{BankName: "Al Rajhi", IBAN: "SA0380000000608010167519"},
		},
		Items: []entity.LineItem{
			{ID: "a", Description: "Diseño", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)},
			{ID: "b", Description: "Soporte", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(50)},
		},
		Rates: entity.RateParameters{DiscountRate: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(15)},
		Theme: entity.ThemeSnapshot{PrimaryColor: "#8A1538", FontFamily: "Courier"},
	}
}

func TestGenerateInvoicePDF_ConQR(t *testing.T) {
	uc := billing.NewDocumentUseCase(qrcode.NewRenderer(160), nil, nil, 0)
	doc := uc.FromDraft(context.Background(), sampleDraft())
	require.Equal(t, billing.CodeStatusReady, doc.Code.Status)

	b, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "debe ser un PDF")
}

func TestGenerateInvoicePDF_SinQRNiLineas(t *testing.T) {
	d := sampleDraft()
	d.Items = []entity.LineItem{}
	d.Header.Seller = entity.Party{}
	uc := billing.NewDocumentUseCase(qrcode.NewRenderer(160), nil, nil, 0)
	doc := uc.FromDraft(context.Background(), d)
	require.Equal(t, billing.CodeStatusUnavailable, doc.Code.Status)

	b, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestGenerateInvoicePDF_Errores(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMarotoPDFGenerator().GenerateInvoicePDF(ctx, &billing.InvoiceDocument{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaletteFrom_ColorInvalidoUsaDefault(t *testing.T) {
	pal := paletteFrom(entity.ThemeSnapshot{PrimaryColor: "#8A1538", AccentColor: "rojo"})
	assert.Equal(t, 0x8A, pal.primary.Red)
	assert.Equal(t, 0x15, pal.primary.Green)
	assert.Equal(t, 0x38, pal.primary.Blue)
	assert.Equal(t, 100, pal.accent.Red, "acento inválido toma el del tema por defecto")
}

func TestFontFamily(t *testing.T) {
	assert.Equal(t, "courier", fontFamily("Courier"))
	assert.Equal(t, "times", fontFamily(" times "))
	assert.Equal(t, "helvetica", fontFamily("Comic Sans"))
	assert.Equal(t, "helvetica", fontFamily(""))
}
