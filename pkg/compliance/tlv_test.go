package compliance_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/pkg/compliance"
)

func testFields() compliance.Fields {
	return compliance.Fields{
		SellerName:  "Bobs Records",
		SellerTaxID: "310122393500003",
		Timestamp:   "2022-04-25T15:30:00Z",
		GrandTotal:  "1000.00",
		TaxAmount:   "150.00",
	}
}

// TestEncodeTLV_VectorConocido valida el ejemplo publicado del esquema TLV:
// cada campo es tag (1 byte) + longitud (1 byte) + valor UTF-8.
func TestEncodeTLV_VectorConocido(t *testing.T) {
	got, err := compliance.EncodeTLV(testFields())
	require.NoError(t, err)
	assert.Equal(t,
		"AQxCb2JzIFJlY29yZHMCDzMxMDEyMjM5MzUwMDAwMwMUMjAyMi0wNC0yNVQxNTozMDowMFoEBzEwMDAuMDAFBjE1MC4wMA==",
		got)
}

func TestEncodeTLV_Determinista(t *testing.T) {
	a, err1 := compliance.EncodeTLV(testFields())
	b, err2 := compliance.EncodeTLV(testFields())
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a, b, "el mismo resumen debe producir siempre el mismo texto")
}

func TestEncodeTLV_CambioDeRegistroFiscalCambiaTexto(t *testing.T) {
	f2 := testFields()
	f2.SellerTaxID = "310122393500004"
	a, _ := compliance.EncodeTLV(testFields())
	b, _ := compliance.EncodeTLV(f2)
	assert.NotEqual(t, a, b)
}

func TestEncodeTLV_RoundTrip(t *testing.T) {
	f := testFields()
	f.SellerName = "Café Ñandú"
	enc, err := compliance.EncodeTLV(f)
	require.NoError(t, err)
	dec, err := compliance.DecodeTLV(enc)
	require.NoError(t, err)
	assert.Equal(t, f, dec)
}

func TestEncodeTLV_Errores(t *testing.T) {
	sinVendedor := testFields()
	sinVendedor.SellerName = "  "
	_, err := compliance.EncodeTLV(sinVendedor)
	assert.ErrorIs(t, err, compliance.ErrPayloadMalformed)

	sinTotal := testFields()
	sinTotal.GrandTotal = ""
	_, err = compliance.EncodeTLV(sinTotal)
	assert.ErrorIs(t, err, compliance.ErrPayloadMalformed)

	muyLargo := testFields()
	muyLargo.SellerName = strings.Repeat("x", 256)
	_, err = compliance.EncodeTLV(muyLargo)
	assert.ErrorIs(t, err, compliance.ErrPayloadTooLarge)
}

func TestDecodeTLV_Corrupto(t *testing.T) {
	_, err := compliance.DecodeTLV("no es base64!!")
	assert.ErrorIs(t, err, compliance.ErrPayloadMalformed)

	truncado := base64.StdEncoding.EncodeToString([]byte{1, 10, 'a'})
	_, err = compliance.DecodeTLV(truncado)
	assert.ErrorIs(t, err, compliance.ErrPayloadMalformed)
}
