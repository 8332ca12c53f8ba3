package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/pkg/currency"
)

const dateLayout = "2006-01-02"

// ── Requests ──────────────────────────────────────────────────────────────────

// UpdateItemRequest body para PATCH /api/drafts/current/items/:id.
type UpdateItemRequest struct {
	Field string     `json:"field" validate:"required,oneof=description quantity rate"`
	Value FlexString `json:"value"`
}

// RatesRequest body para PUT /api/drafts/current/rates. Un campo ausente no se toca.
type RatesRequest struct {
	DiscountRate *FlexString `json:"discount_rate,omitempty"`
	TaxRate      *FlexString `json:"tax_rate,omitempty"`
}

// PartyRequest vendedor o comprador.
type PartyRequest struct {
	Name    string `json:"name" validate:"max=255"`
	TaxID   string `json:"tax_id" validate:"max=64"`
	Address string `json:"address,omitempty" validate:"max=500"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=32"`
}

// BankRequest datos bancarios.
type BankRequest struct {
	BankName      string `json:"bank_name,omitempty" validate:"max=120"`
	AccountName   string `json:"account_name,omitempty" validate:"max=120"`
	AccountNumber string `json:"account_number,omitempty" validate:"max=64"`
	IBAN          string `json:"iban,omitempty" validate:"omitempty,alphanum,min=15,max=34"`
	SWIFT         string `json:"swift,omitempty" validate:"omitempty,alphanum,min=8,max=11"`
}

// HeaderRequest body para PUT /api/drafts/current/header. Fechas como
// "2006-01-02" o RFC3339; la de emisión va al resumen fiscal.
type HeaderRequest struct {
	InvoiceNumber string       `json:"invoice_number" validate:"max=64"`
	PurchaseOrder string       `json:"purchase_order,omitempty" validate:"max=64"`
	Date          string       `json:"date" validate:"omitempty,datetime=2006-01-02|datetime=2006-01-02T15:04:05Z07:00"`
	DueDate       string       `json:"due_date" validate:"omitempty,datetime=2006-01-02|datetime=2006-01-02T15:04:05Z07:00"`
	Currency      string       `json:"currency" validate:"required,len=3,alpha"`
	Seller        PartyRequest `json:"seller"`
	Buyer         PartyRequest `json:"buyer"`
	Notes         string       `json:"notes,omitempty" validate:"max=2000"`
	Bank          BankRequest  `json:"bank"`
	PlaceOfSupply string       `json:"place_of_supply,omitempty" validate:"max=120"`
	Country       string       `json:"country,omitempty" validate:"omitempty,len=2,alpha"`
}

// ToEntity convierte la cabecera ya validada.
func (r HeaderRequest) ToEntity() (entity.InvoiceHeader, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return entity.InvoiceHeader{}, fmt.Errorf("date: %w", err)
	}
	due, err := parseDate(r.DueDate)
	if err != nil {
		return entity.InvoiceHeader{}, fmt.Errorf("due_date: %w", err)
	}
	return entity.InvoiceHeader{
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		PurchaseOrder: strings.TrimSpace(r.PurchaseOrder),
		Date:          date,
		DueDate:       due,
		Currency:      strings.ToUpper(r.Currency),
		Seller:        entity.Party(r.Seller),
		Buyer:         entity.Party(r.Buyer),
		Notes:         r.Notes,
		Bank:          entity.BankDetails(r.Bank),
		PlaceOfSupply: r.PlaceOfSupply,
		Country:       strings.ToUpper(r.Country),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("formato de fecha inválido")
	}
	return t.UTC(), nil
}

// ThemeRequest body para PUT /api/drafts/current/theme.
type ThemeRequest struct {
	PrimaryColor string `json:"primary_color" validate:"omitempty,hexcolor,len=7"`
	AccentColor  string `json:"accent_color" validate:"omitempty,hexcolor,len=7"`
	TextColor    string `json:"text_color" validate:"omitempty,hexcolor,len=7"`
	FontFamily   string `json:"font_family" validate:"omitempty,oneof=helvetica arial courier times"`
	LogoURL      string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

// ToEntity convierte el tema; los vacíos se completan con el tema por defecto.
func (r ThemeRequest) ToEntity() entity.ThemeSnapshot {
	return entity.ThemeSnapshot(r).WithDefaults()
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ItemResponse línea en respuestas. Cantidades y montos como texto decimal exacto.
type ItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// TotalsResponse totales exactos y formateados.
type TotalsResponse struct {
	Subtotal       string                  `json:"subtotal"`
	DiscountAmount string                  `json:"discount_amount"`
	TaxableBase    string                  `json:"taxable_base"`
	TaxAmount      string                  `json:"tax_amount"`
	GrandTotal     string                  `json:"grand_total"`
	Formatted      billing.FormattedTotals `json:"formatted"`
}

// RatesResponse porcentajes vigentes.
type RatesResponse struct {
	DiscountRate string `json:"discount_rate"`
	TaxRate      string `json:"tax_rate"`
}

// PayloadResponse resumen fiscal.
type PayloadResponse struct {
	SellerName  string `json:"seller_name"`
	SellerTaxID string `json:"seller_tax_id"`
	IssueDate   string `json:"issue_date,omitempty"`
	GrandTotal  string `json:"grand_total"`
	TaxAmount   string `json:"tax_amount"`
}

// CodeResponse estado del QR. La imagen solo va en GET /code.
type CodeResponse struct {
	Seq         uint64          `json:"seq"`
	Status      string          `json:"status"`
	Payload     PayloadResponse `json:"payload"`
	Text        string          `json:"text,omitempty"`
	ImageBase64 string          `json:"image_base64,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// DraftResponse estado completo de la sesión de edición.
type DraftResponse struct {
	SessionID string               `json:"session_id"`
	Header    entity.InvoiceHeader `json:"header"`
	Items     []ItemResponse       `json:"items"`
	Rates     RatesResponse        `json:"rates"`
	Totals    TotalsResponse       `json:"totals"`
	Theme     entity.ThemeSnapshot `json:"theme"`
	Code      CodeResponse         `json:"code"`
	UpdatedAt time.Time            `json:"updated_at"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// SavedDraftResponse resumen del último borrador guardado.
type SavedDraftResponse struct {
	Key        string     `json:"key"`
	Currency   string     `json:"currency"`
	GrandTotal string     `json:"grand_total"`
	Formatted  string     `json:"formatted"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// CurrenciesResponse monedas con símbolo y decimales.
type CurrenciesResponse struct {
	Currencies []CurrencyInfo `json:"currencies"`
}

// CurrencyInfo una moneda soportada.
type CurrencyInfo struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Scale  int32  `json:"scale"`
}

// NewCurrenciesResponse catálogo de monedas soportadas.
func NewCurrenciesResponse() CurrenciesResponse {
	codes := currency.Supported()
	out := CurrenciesResponse{Currencies: make([]CurrencyInfo, 0, len(codes))}
	for _, c := range codes {
		out.Currencies = append(out.Currencies, CurrencyInfo{Code: c, Symbol: currency.Symbol(c), Scale: currency.Scale(c)})
	}
	return out
}

// NewSavedDraftResponse convierte el resumen guardado; UpdatedAt se omite si el almacén no lo registra.
func NewSavedDraftResponse(key string, sum entity.DraftSummary) SavedDraftResponse {
	out := SavedDraftResponse{
		Key:        key,
		Currency:   sum.Currency,
		GrandTotal: sum.GrandTotal.String(),
		Formatted:  currency.Format(sum.Currency, sum.GrandTotal),
	}
	if !sum.UpdatedAt.IsZero() {
		at := sum.UpdatedAt.UTC()
		out.UpdatedAt = &at
	}
	return out
}

// NewItemResponse convierte una línea.
func NewItemResponse(it entity.LineItem) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Description: it.Description,
		Quantity:    it.Quantity.String(),
		Rate:        it.Rate.String(),
		Amount:      it.Amount.String(),
	}
}

// NewTotalsResponse convierte totales; el formato sigue a la moneda.
func NewTotalsResponse(code string, t entity.InvoiceTotals) TotalsResponse {
	return TotalsResponse{
		Subtotal:       t.Subtotal.String(),
		DiscountAmount: t.DiscountAmount.String(),
		TaxableBase:    t.TaxableBase.String(),
		TaxAmount:      t.TaxAmount.String(),
		GrandTotal:     t.GrandTotal.String(),
		Formatted:      billing.FormatTotals(code, t),
	}
}

// NewRatesResponse convierte porcentajes.
func NewRatesResponse(r entity.RateParameters) RatesResponse {
	return RatesResponse{DiscountRate: r.DiscountRate.String(), TaxRate: r.TaxRate.String()}
}

// NewCodeResponse convierte el estado del QR; withImage agrega el PNG en base64.
func NewCodeResponse(c billing.ComplianceCode, withImage bool) CodeResponse {
	out := CodeResponse{
		Seq:    c.Seq,
		Status: string(c.Status),
		Text:   c.Text,
		Payload: PayloadResponse{
			SellerName:  c.Payload.SellerName,
			SellerTaxID: c.Payload.SellerTaxID,
			GrandTotal:  c.Payload.GrandTotal,
			TaxAmount:   c.Payload.TaxAmount,
		},
	}
	if !c.Payload.IssueDate.IsZero() {
		out.Payload.IssueDate = c.Payload.IssueDate.UTC().Format(time.RFC3339)
	}
	if withImage && len(c.Image) > 0 {
		out.ImageBase64 = base64.StdEncoding.EncodeToString(c.Image)
	}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	return out
}

// NewDraftResponse convierte un snapshot de la sesión.
func NewDraftResponse(s billing.SessionSnapshot) DraftResponse {
	items := make([]ItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, NewItemResponse(it))
	}
	out := DraftResponse{
		SessionID: s.ID,
		Header:    s.Header,
		Items:     items,
		Rates:     NewRatesResponse(s.Rates),
		Totals:    NewTotalsResponse(s.Header.Currency, s.Totals),
		Theme:     s.Theme,
		Code:      NewCodeResponse(s.Code, false),
		UpdatedAt: s.UpdatedAt,
	}
	if s.Header.DueBeforeIssue() {
		out.Warnings = append(out.Warnings, "la fecha de vencimiento es anterior a la de emisión")
	}
	if s.Header.Currency != "" && !currency.IsSupported(s.Header.Currency) {
		out.Warnings = append(out.Warnings, "moneda sin catálogo: se usa el código como símbolo")
	}
	return out
}

// RateValue texto de un porcentaje opcional; nil → "", ok=false.
func RateValue(v *FlexString) (string, bool) {
	if v == nil {
		return "", false
	}
	return string(*v), true
}
