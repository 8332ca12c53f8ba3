package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
)

func rates(discount, tax string) entity.RateParameters {
	return entity.RateParameters{DiscountRate: dec(discount), TaxRate: dec(tax)}
}

// Escenario de referencia: 2×100 + 1×50, 10% descuento, 15% impuesto.
func TestRecomputeTotals_EscenarioReferencia(t *testing.T) {
	l := invoice.NewLedger()
	first := l.Items()[0].ID
	l.UpdateItem(first, entity.FieldQuantity, "2")
	l.UpdateItem(first, entity.FieldRate, "100")
	assertDec(t, "200", l.Items()[0].Amount)

	second := l.AddItem().ID
	l.UpdateItem(second, entity.FieldQuantity, "1")
	l.UpdateItem(second, entity.FieldRate, "50")

	tot := invoice.RecomputeTotals(l.Items(), rates("10", "15"))
	assertDec(t, "250", tot.Subtotal)
	assertDec(t, "25", tot.DiscountAmount)
	assertDec(t, "225", tot.TaxableBase)
	assertDec(t, "33.75", tot.TaxAmount)
	assertDec(t, "258.75", tot.GrandTotal)

	// Quitar la segunda línea
	require.True(t, l.RemoveItem(second))
	tot = invoice.RecomputeTotals(l.Items(), rates("10", "15"))
	assertDec(t, "200", tot.Subtotal)
	assertDec(t, "180", tot.TaxableBase)
	assertDec(t, "27", tot.TaxAmount)
	assertDec(t, "207", tot.GrandTotal)
}

func TestRecomputeTotals_SinDescuentoNiImpuesto(t *testing.T) {
	items := []entity.LineItem{{ID: "x", Quantity: dec("5"), Rate: dec("100"), Amount: dec("500")}}
	tot := invoice.RecomputeTotals(items, rates("0", "0"))
	assertDec(t, "500", tot.GrandTotal)
}

func TestRecomputeTotals_LedgerVacio(t *testing.T) {
	for _, r := range []entity.RateParameters{rates("0", "0"), rates("10", "15"), rates("100", "100")} {
		tot := invoice.RecomputeTotals(nil, r)
		assertDec(t, "0", tot.Subtotal)
		assertDec(t, "0", tot.DiscountAmount)
		assertDec(t, "0", tot.TaxAmount)
		assertDec(t, "0", tot.GrandTotal)
	}
}

// La identidad del total se verifica calculando por separado, no con la misma función.
func TestRecomputeTotals_IdentidadDelTotal(t *testing.T) {
	subtotals := []string{"0", "0.01", "1", "99.99", "250", "1234567.89"}
	rateValues := []string{"0", "0.5", "5", "10", "15", "19", "33.333", "100"}
	hundred := decimal.NewFromInt(100)

	for _, s := range subtotals {
		for _, d := range rateValues {
			for _, tx := range rateValues {
				items := []entity.LineItem{{ID: "x", Quantity: dec("1"), Rate: dec(s), Amount: dec(s)}}
				tot := invoice.RecomputeTotals(items, rates(d, tx))

				sub := dec(s)
				disc := sub.Mul(dec(d)).Div(hundred)
				base := sub.Sub(disc)
				tax := base.Mul(dec(tx)).Div(hundred)
				want := sub.Sub(disc).Add(tax)

				assert.True(t, want.Equal(tot.GrandTotal), "s=%s d=%s t=%s: %s != %s", s, d, tx, want, tot.GrandTotal)
				assert.True(t, tot.GrandTotal.Equal(tot.Subtotal.Sub(tot.DiscountAmount).Add(tot.TaxAmount)))
			}
		}
	}
}

// Sumar muchas líneas de 0.1 no acumula error binario.
func TestComputeSubtotal_SinErrorDeRedondeo(t *testing.T) {
	items := make([]entity.LineItem, 1000)
	for i := range items {
		items[i] = entity.LineItem{Quantity: dec("1"), Rate: dec("0.1"), Amount: dec("0.1")}
	}
	assertDec(t, "100", invoice.ComputeSubtotal(items))
}

func TestComputeSubtotal_Aditividad(t *testing.T) {
	items := []entity.LineItem{
		{Amount: dec("12.30")},
		{Amount: dec("7.70")},
	}
	base := invoice.ComputeSubtotal(items)
	extra := entity.LineItem{Amount: dec("3.33")}
	with := invoice.ComputeSubtotal(append(items, extra))
	assert.True(t, with.Sub(base).Equal(extra.Amount))
}

func TestRecomputeTotals_Idempotente(t *testing.T) {
	items := []entity.LineItem{
		{ID: "a", Quantity: dec("3"), Rate: dec("19.99"), Amount: dec("59.97")},
		{ID: "b", Quantity: dec("0.25"), Rate: dec("80"), Amount: dec("20")},
	}
	r := rates("7.5", "15")
	assert.Equal(t, invoice.RecomputeTotals(items, r), invoice.RecomputeTotals(items, r))
}

func TestComputeDiscountYTax_RecortanPorcentajes(t *testing.T) {
	assertDec(t, "0", invoice.ComputeDiscount(dec("200"), dec("-10")))
	assertDec(t, "200", invoice.ComputeDiscount(dec("200"), dec("150")))
	assertDec(t, "0", invoice.ComputeTax(dec("200"), dec("-1")))
	assertDec(t, "200", invoice.ComputeTax(dec("200"), dec("101")))
	assertDec(t, "30", invoice.ComputeTax(dec("200"), dec("15")))
}

func TestComputeTotal(t *testing.T) {
	assertDec(t, "258.75", invoice.ComputeTotal(dec("250"), dec("25"), dec("33.75")))
}

func TestParseRate(t *testing.T) {
	assertDec(t, "15", invoice.ParseRate("15"))
	assertDec(t, "100", invoice.ParseRate("250"))
	assertDec(t, "0", invoice.ParseRate("-5"))
	assertDec(t, "0", invoice.ParseRate("x"))
	assertDec(t, "100", invoice.ParseRate("1e20"))
	assertDec(t, "100", invoice.ParseRate("1e2000000000"))
	assertDec(t, "0", invoice.ParseRate("1e-2000000000"))
	assertDec(t, "100", invoice.ClampRate(decimal.New(1, 2000000000)))
}
