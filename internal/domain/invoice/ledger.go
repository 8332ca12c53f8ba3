// Package invoice contiene la lógica de cálculo de la factura: ledger de líneas,
// agregación de totales y armado del resumen fiscal. Todo es síncrono y sin I/O.
package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// Ledger colección ordenada de líneas facturables de una sesión de edición.
// Mantiene Amount == Quantity × Rate en cada línea: el recálculo ocurre dentro de
// la misma llamada que modifica cantidad o precio.
//
// El ledger puede quedar vacío: la regla de "al menos una línea" es del front.
// No es seguro para uso concurrente; el dueño (Session) serializa el acceso.
type Ledger struct {
	items []entity.LineItem
	newID func() string
}

// NewLedger crea un ledger con una línea vacía para que el formulario tenga qué mostrar.
func NewLedger() *Ledger {
	l := &Ledger{newID: uuid.NewString}
	l.AddItem()
	return l
}

// NewLedgerFromItems reconstruye un ledger desde un borrador guardado.
// Los montos guardados se descartan y se recalculan; ids vacíos o repetidos se reemplazan.
func NewLedgerFromItems(items []entity.LineItem) *Ledger {
	l := &Ledger{newID: uuid.NewString, items: make([]entity.LineItem, 0, len(items))}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			it.ID = l.newID()
		}
		seen[it.ID] = true
		it.Quantity = NonNegative(it.Quantity)
		it.Rate = NonNegative(it.Rate)
		it.Amount = LineAmount(it.Quantity, it.Rate)
		l.items = append(l.items, it)
	}
	return l
}

// LineAmount monto de una línea: cantidad × precio, sin redondear.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// AddItem agrega al final una línea con cantidad 1, precio 0 y descripción vacía.
func (l *Ledger) AddItem() entity.LineItem {
	it := entity.LineItem{
		ID:       l.newID(),
		Quantity: decimal.NewFromInt(1),
		Rate:     decimal.Zero,
		Amount:   decimal.Zero,
	}
	l.items = append(l.items, it)
	return it
}

// RemoveItem quita la línea con ese id. Retorna false (no-op) si no existe.
func (l *Ledger) RemoveItem(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// UpdateItem asigna un campo a partir del texto tecleado. Cantidad y precio se
// convierten con ParseNonNegative (no numérico, negativo o fuera de cota → 0) y el monto se
// recalcula antes de retornar. Retorna false si el id no existe o el campo no es editable.
func (l *Ledger) UpdateItem(id string, field entity.ItemField, value string) (entity.LineItem, bool) {
	i := l.indexOf(id)
	if i < 0 || !field.Valid() {
		return entity.LineItem{}, false
	}
	it := l.items[i]
	switch field {
	case entity.FieldDescription:
		it.Description = value
	case entity.FieldQuantity:
		it.Quantity = ParseNonNegative(value)
	case entity.FieldRate:
		it.Rate = ParseNonNegative(value)
	}
	it.Amount = LineAmount(it.Quantity, it.Rate)
	l.items[i] = it
	return it, true
}

// Item devuelve una copia de la línea.
func (l *Ledger) Item(id string) (entity.LineItem, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return entity.LineItem{}, false
	}
	return l.items[i], true
}

// Items copia de las líneas en orden de visualización.
func (l *Ledger) Items() []entity.LineItem {
	out := make([]entity.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len cantidad de líneas.
func (l *Ledger) Len() int { return len(l.items) }

func (l *Ledger) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
