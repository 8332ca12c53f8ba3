package billing

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
	"github.com/jhoicas/invoice-builder/pkg/currency"
)

// FormattedTotals totales ya redondeados y con símbolo de moneda, listos para imprimir.
type FormattedTotals struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxableBase    string `json:"taxable_base"`
	TaxAmount      string `json:"tax_amount"`
	GrandTotal     string `json:"grand_total"`
}

// FormatTotals aplica el formato de la moneda a cada total (único punto de redondeo).
func FormatTotals(code string, t entity.InvoiceTotals) FormattedTotals {
	return FormattedTotals{
		Subtotal:       currency.Format(code, t.Subtotal),
		DiscountAmount: currency.Format(code, t.DiscountAmount),
		TaxableBase:    currency.Format(code, t.TaxableBase),
		TaxAmount:      currency.Format(code, t.TaxAmount),
		GrandTotal:     currency.Format(code, t.GrandTotal),
	}
}

// InvoiceDocument todo lo que un renderizador (PDF, XML) necesita; no tiene lógica propia.
type InvoiceDocument struct {
	Header    entity.InvoiceHeader
	Items     []entity.LineItem
	Rates     entity.RateParameters
	Totals    entity.InvoiceTotals
	Formatted FormattedTotals
	Theme     entity.ThemeSnapshot
	Payload   entity.CompliancePayload
	Code      ComplianceCode
}

// Filename nombre sugerido para la descarga, ej "factura_INV-0001.pdf".
func (d *InvoiceDocument) Filename(ext string) string {
	num := strings.TrimSpace(d.Header.InvoiceNumber)
	if num == "" {
		num = "borrador"
	}
	num = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '"', unicode.IsSpace(r), unicode.IsControl(r):
			return '_'
		}
		return r
	}, num)
	return fmt.Sprintf("factura_%s.%s", num, ext)
}

// DocumentUseCase arma el documento de una sesión o de un borrador suelto y lo
// entrega a los exportadores. Paginación, fuentes y archivo son del exportador.
type DocumentUseCase struct {
	renderer CodeRenderer
	pdf      InvoicePDFGenerator
	xml      InvoiceXMLBuilder
	codeWait time.Duration
}

// NewDocumentUseCase construye el caso de uso. codeWait es lo máximo que se
// espera al QR en curso antes de exportar sin él.
func NewDocumentUseCase(renderer CodeRenderer, pdf InvoicePDFGenerator, xml InvoiceXMLBuilder, codeWait time.Duration) *DocumentUseCase {
	return &DocumentUseCase{renderer: renderer, pdf: pdf, xml: xml, codeWait: codeWait}
}

// FromSession arma el documento con el snapshot vigente, esperando (acotado) el QR.
func (uc *DocumentUseCase) FromSession(ctx context.Context, s *Session) *InvoiceDocument {
	if uc.codeWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, uc.codeWait)
		s.WaitCode(waitCtx)
		cancel()
	}
	snap := s.Snapshot()
	return &InvoiceDocument{
		Header:    snap.Header,
		Items:     snap.Items,
		Rates:     snap.Rates,
		Totals:    snap.Totals,
		Formatted: FormatTotals(snap.Header.Currency, snap.Totals),
		Theme:     snap.Theme,
		Payload:   snap.Payload,
		Code:      snap.Code,
	}
}

// FromDraft arma el documento de un borrador sin sesión (CLI). El QR se genera
// de forma síncrona; si falla, el documento queda con el código "unavailable".
func (uc *DocumentUseCase) FromDraft(ctx context.Context, d entity.Draft) *InvoiceDocument {
	ledger := invoice.NewLedgerFromItems(d.Items)
	rates := entity.RateParameters{
		DiscountRate: invoice.ClampRate(d.Rates.DiscountRate),
		TaxRate:      invoice.ClampRate(d.Rates.TaxRate),
	}
	items := ledger.Items()
	totals := invoice.RecomputeTotals(items, rates)
	payload := invoice.BuildPayload(d.Header, totals)

	code := ComplianceCode{Seq: 1, Status: CodeStatusReady, Payload: payload}
	text, err := invoice.PayloadText(payload)
	code.Text = text
	if err == nil {
		if uc.renderer == nil {
			err = fmt.Errorf("renderizador de QR no configurado")
		} else {
			code.Image, err = uc.renderer.RenderPNG(ctx, text)
		}
	}
	if err != nil {
		code.Status = CodeStatusUnavailable
		code.Image = nil
		code.Err = fmt.Errorf("%w: %v", domain.ErrCodeUnavailable, err)
	}

	return &InvoiceDocument{
		Header:    d.Header,
		Items:     items,
		Rates:     rates,
		Totals:    totals,
		Formatted: FormatTotals(d.Header.Currency, totals),
		Theme:     d.Theme.WithDefaults(),
		Payload:   payload,
		Code:      code,
	}
}

// ExportPDF genera el PDF del documento.
func (uc *DocumentUseCase) ExportPDF(ctx context.Context, doc *InvoiceDocument) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("pdf: generador no configurado")
	}
	b, err := uc.pdf.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, doc.Filename("pdf"), nil
}

// ExportXML genera el XML UBL del documento.
func (uc *DocumentUseCase) ExportXML(doc *InvoiceDocument) ([]byte, string, error) {
	if uc.xml == nil {
		return nil, "", fmt.Errorf("xml: builder no configurado")
	}
	b, err := uc.xml.BuildInvoiceXML(doc)
	if err != nil {
		return nil, "", fmt.Errorf("xml: generación fallida: %w", err)
	}
	return b, doc.Filename("xml"), nil
}
