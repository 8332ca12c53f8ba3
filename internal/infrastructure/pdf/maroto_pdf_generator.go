// Package pdf genera la representación imprimible de la factura con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Vendedor + registro fiscal │ N° Factura + fechas   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VENDEDOR / COMPRADOR: dirección, contacto, registro fiscal │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Descripción | Cant. | Precio | Importe              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Base / Impuesto / TOTAL    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: QR de verificación + datos bancarios + notas          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/currency"
)

var colorWhite = &props.Color{Red: 255, Green: 255, Blue: 255}

// palette colores del tema ya convertidos para Maroto.
type palette struct {
	primary *props.Color
	accent  *props.Color
	text    *props.Color
}

func paletteFrom(t entity.ThemeSnapshot) palette {
	d := entity.DefaultTheme()
	return palette{
		primary: colorOr(t.PrimaryColor, d.PrimaryColor),
		accent:  colorOr(t.AccentColor, d.AccentColor),
		text:    colorOr(t.TextColor, d.TextColor),
	}
}

func colorOr(hex, fallback string) *props.Color {
	r, g, b, err := entity.ParseHexColor(hex)
	if err != nil {
		r, g, b, _ = entity.ParseHexColor(fallback)
	}
	return &props.Color{Red: r, Green: g, Blue: b}
}

// fontFamilyTimes es la familia core "times" de gofpdf; maroto no expone una constante para ella.
const fontFamilyTimes = "times"

// fontFamily solo las familias core de PDF; otra cualquiera cae a helvetica.
func fontFamily(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case fontfamily.Courier:
		return fontfamily.Courier
	case fontfamily.Arial:
		return fontfamily.Arial
	case fontFamilyTimes:
		return fontFamilyTimes
	default:
		return fontfamily.Helvetica
	}
}

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, doc *billing.InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pal := paletteFrom(doc.Theme)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: fontFamily(doc.Theme.FontFamily), Size: 9, Color: pal.text}).
		WithTitle("Factura "+nonEmpty(doc.Header.InvoiceNumber, "borrador"), true).
		WithAuthor(nonEmpty(doc.Header.Seller.Name, "—"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, pal))
	m.AddRows(line.NewRow(1, props.Line{Color: pal.primary, Thickness: 0.5}))
	m.AddRows(partiesRows(doc.Header, pal)...)
	m.AddRows(line.NewRow(1, props.Line{Color: pal.primary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(pal))
	m.AddRows(tableDetailRows(doc)...)

	m.AddRows(line.NewRow(1, props.Line{Color: pal.primary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc, pal))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: pal.accent, Thickness: 0.3}))
	m.AddRows(footerRows(doc, pal)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: vendedor + registro fiscal (izq) y N° factura + fechas (der).
func headerRow(doc *billing.InvoiceDocument, pal palette) core.Row {
	h := doc.Header
	fechas := "Fecha: " + formatDate(h)
	if !h.DueDate.IsZero() {
		fechas += "   Vence: " + h.DueDate.Format("02/01/2006")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(h.Seller.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: pal.primary, Top: 1,
			}),
			text.New("Registro fiscal: "+nonEmpty(h.Seller.TaxID, "—"), props.Text{
				Size: 9, Top: 9, Color: pal.accent,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: pal.primary, Top: 1,
			}),
			text.New(nonEmpty(h.InvoiceNumber, "Borrador"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(fechas, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: pal.accent,
			}),
		),
	)
}

// partiesRows: vendedor y comprador lado a lado, más orden de compra y lugar de suministro si hay.
func partiesRows(h entity.InvoiceHeader, pal palette) []core.Row {
	party := func(title string, p entity.Party) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: pal.primary, Top: 1,
			}),
			text.New(nonEmpty(p.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(nonEmpty(p.Address, "—"), props.Text{Size: 8, Top: 12, Color: pal.accent}),
			text.New(fmt.Sprintf("Reg. fiscal: %s   |   %s",
				nonEmpty(p.TaxID, "—"),
				nonEmpty(p.Email, nonEmpty(p.Phone, "—")),
			), props.Text{Size: 8, Top: 17, Color: pal.accent}),
		)
	}
	rows := []core.Row{row.New(24).Add(party("VENDEDOR", h.Seller), party("COMPRADOR", h.Buyer))}

	var extra []string
	if h.PurchaseOrder != "" {
		extra = append(extra, "Orden de compra: "+h.PurchaseOrder)
	}
	if h.PlaceOfSupply != "" {
		extra = append(extra, "Lugar de suministro: "+h.PlaceOfSupply)
	}
	if len(extra) > 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(strings.Join(extra, "   |   "), props.Text{Size: 7, Top: 1, Color: pal.accent}),
		)))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla con fondo del color primario.
func tableHeaderRow(pal palette) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Descripción", 6, align.Left),
		h("Cant.", 2, align.Center),
		h("Precio", 2, align.Right),
		h("Importe", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: pal.primary})
}

// tableDetailRows: una fila por línea; importes redondeados a la moneda.
func tableDetailRows(doc *billing.InvoiceDocument) []core.Row {
	cur := doc.Header.Currency
	result := make([]core.Row, 0, len(doc.Items))
	for _, it := range doc.Items {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				nonEmpty(it.Description, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				currency.Format(cur, it.Rate),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				currency.Format(cur, it.Amount),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc *billing.InvoiceDocument, pal palette) core.Row {
	f := doc.Formatted
	labels := []string{
		"Subtotal:",
		fmt.Sprintf("Descuento (%s%%):", doc.Rates.DiscountRate.String()),
		"Base imponible:",
		fmt.Sprintf("Impuesto (%s%%):", doc.Rates.TaxRate.String()),
	}
	values := []string{f.Subtotal, f.DiscountAmount, f.TaxableBase, f.TaxAmount}

	left := col.New(3)
	right := col.New(3)
	for i := range labels {
		top := float64(i) * 5
		left.Add(text.New(labels[i], props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		}))
		right.Add(text.New(values[i], props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	left.Add(text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: pal.primary, Right: 2, Top: 21,
	}))
	right.Add(text.New(f.GrandTotal, props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: pal.primary, Right: 1, Top: 21,
	}))

	return row.New(28).Add(col.New(6), left, right)
}

// footerRows: QR de verificación + datos bancarios + notas.
func footerRows(doc *billing.InvoiceDocument, pal palette) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("VERIFICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: pal.primary, Top: 1,
			}),
		)),
	}

	var qrCol core.Col
	switch {
	case doc.Code.Status == billing.CodeStatusReady && len(doc.Code.Image) > 0:
		qrCol = col.New(4).Add(image.NewFromBytes(doc.Code.Image, extension.Png, props.Rect{
			Percent: 95,
			Center:  true,
		}))
	case doc.Code.Status == billing.CodeStatusPending:
		qrCol = col.New(4).Add(text.New("Código de verificación en generación", props.Text{
			Size: 8, Top: 18, Align: align.Center, Color: pal.accent,
		}))
	default:
		qrCol = col.New(4).Add(text.New("Código de verificación no disponible", props.Text{
			Size: 8, Top: 18, Align: align.Center, Color: pal.accent,
		}))
	}

	rows = append(rows, row.New(45).Add(
		qrCol,
		col.New(8).Add(bankTexts(doc.Header.Bank, pal)...),
	))

	if notes := strings.TrimSpace(doc.Header.Notes); notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New(notes, props.Text{Size: 7, Color: pal.accent, Top: 2}),
		)))
	}
	return rows
}

func bankTexts(b entity.BankDetails, pal palette) []core.Component {
	out := []core.Component{
		text.New("DATOS DE PAGO", props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2, Left: 3, Color: pal.primary,
		}),
	}
	fields := [][2]string{
		{"Banco", b.BankName},
		{"Titular", b.AccountName},
		{"Cuenta", b.AccountNumber},
		{"IBAN", b.IBAN},
		{"SWIFT", b.SWIFT},
	}
	top := 8.0
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		out = append(out, text.New(f[0]+": "+f[1], props.Text{
			Size: 8, Top: top, Left: 3, Color: pal.accent,
		}))
		top += 5
	}
	if top == 8.0 {
		out = append(out, text.New("—", props.Text{Size: 8, Top: top, Left: 3, Color: pal.accent}))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func formatDate(h entity.InvoiceHeader) string {
	if h.Date.IsZero() {
		return "—"
	}
	return h.Date.Format("02/01/2006")
}
