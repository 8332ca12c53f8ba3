package entity

import "github.com/shopspring/decimal"

// LineItem una línea facturable. Amount es derivado (Quantity × Rate); el ledger
// lo recalcula en cada cambio y lo recalcula otra vez al cargar un borrador.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// ItemField campos editables de una línea.
type ItemField string

const (
	FieldDescription ItemField = "description"
	FieldQuantity    ItemField = "quantity"
	FieldRate        ItemField = "rate"
)

// Valid indica si el campo es editable.
func (f ItemField) Valid() bool {
	switch f {
	case FieldDescription, FieldQuantity, FieldRate:
		return true
	}
	return false
}
