package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft estado completo de edición que se persiste como un único blob JSON.
// Se sobrescribe entero en cada guardado (sin versiones ni merge).
type Draft struct {
	Header InvoiceHeader  `json:"header"`
	Items  []LineItem     `json:"items"`
	Rates  RateParameters `json:"rates"`
	Theme  ThemeSnapshot  `json:"theme"`
}

// DraftSummary resumen del último borrador guardado: moneda y total sin redondear.
// UpdatedAt queda en cero si el almacén no registra la fecha de guardado.
type DraftSummary struct {
	Currency   string
	GrandTotal decimal.Decimal
	UpdatedAt  time.Time
}
