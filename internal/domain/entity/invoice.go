package entity

import "time"

// Party identifica al vendedor o al comprador de la factura.
type Party struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"` // registro fiscal (VAT, NIT, RFC...)
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// BankDetails datos de pago impresos al pie de la factura.
type BankDetails struct {
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	SWIFT         string `json:"swift,omitempty"`
}

// InvoiceHeader metadatos de identificación de la factura (no calculados).
type InvoiceHeader struct {
	InvoiceNumber string      `json:"invoice_number"`
	PurchaseOrder string      `json:"purchase_order,omitempty"`
	Date          time.Time   `json:"date"`
	DueDate       time.Time   `json:"due_date"`
	Currency      string      `json:"currency"`
	Seller        Party       `json:"seller"`
	Buyer         Party       `json:"buyer"`
	Notes         string      `json:"notes,omitempty"`
	Bank          BankDetails `json:"bank"`
	PlaceOfSupply string      `json:"place_of_supply,omitempty"`
	Country       string      `json:"country,omitempty"` // ISO 3166-1 alpha-2
}

// DueBeforeIssue indica si la fecha de vencimiento es anterior a la de emisión.
// Es solo advertencia: el editor no lo impide.
func (h InvoiceHeader) DueBeforeIssue() bool {
	if h.Date.IsZero() || h.DueDate.IsZero() {
		return false
	}
	return h.DueDate.Before(h.Date)
}
