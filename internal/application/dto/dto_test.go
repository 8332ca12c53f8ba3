package dto_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/application/dto"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

func TestFlexString_AceptaTextoYNumero(t *testing.T) {
	var in dto.UpdateItemRequest
	require.NoError(t, json.Unmarshal([]byte(`{"field":"rate","value":12.50}`), &in))
	assert.Equal(t, dto.FlexString("12.50"), in.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"field":"quantity","value":"3,5"}`), &in))
	assert.Equal(t, dto.FlexString("3,5"), in.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"field":"quantity","value":null}`), &in))
	assert.Equal(t, dto.FlexString(""), in.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"field":"quantity","value":[1]}`), &in))
}

func TestValidate_UpdateItemRequest(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.UpdateItemRequest{Field: "description"}))

	err := dto.Validate(dto.UpdateItemRequest{Field: "amount"})
	var verr *dto.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "oneof", verr.Fields["field"])
}

func TestValidate_HeaderRequest(t *testing.T) {
	ok := dto.HeaderRequest{
		InvoiceNumber: "INV-1",
		Date:          "2026-03-01",
		DueDate:       "2026-03-31T00:00:00Z",
		Currency:      "sar",
		Seller:        dto.PartyRequest{Name: "Acme", TaxID: "300000000000003", Email: "billing@acme.test"},
		Country:       "sa",
	}
	require.NoError(t, dto.Validate(ok))

	h, err := ok.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "SAR", h.Currency)
	assert.Equal(t, "SA", h.Country)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), h.Date)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), h.DueDate)
	assert.Equal(t, "billing@acme.test", h.Seller.Email)

	bad := ok
	bad.Currency = "RIYAL"
	bad.Date = "01/03/2026"
	bad.Seller.Email = "no-es-email"
	var verr *dto.ValidationError
	require.True(t, errors.As(dto.Validate(bad), &verr))
	assert.Equal(t, "len", verr.Fields["currency"])
	assert.Contains(t, verr.Fields, "date")
	assert.Equal(t, "email", verr.Fields["seller.email"])
}

func TestThemeRequest(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.ThemeRequest{PrimaryColor: "#112233", FontFamily: "courier"}))
	assert.Error(t, dto.Validate(dto.ThemeRequest{PrimaryColor: "azul"}))
	assert.Error(t, dto.Validate(dto.ThemeRequest{FontFamily: "comic-sans"}))

	th := dto.ThemeRequest{PrimaryColor: "#112233"}.ToEntity()
	assert.Equal(t, "#112233", th.PrimaryColor)
	assert.Equal(t, "helvetica", th.FontFamily)
}

func TestNewDraftResponse_Advertencias(t *testing.T) {
	snap := billing.SessionSnapshot{
		ID: "s1",
		Header: entity.InvoiceHeader{
			Currency: "XYZ",
			Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			DueDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Code: billing.ComplianceCode{Status: billing.CodeStatusPending},
	}
	out := dto.NewDraftResponse(snap)
	assert.Len(t, out.Warnings, 2)
	assert.Equal(t, "pending", out.Code.Status)
	assert.NotNil(t, out.Items, "lista vacía, no null")
}

func TestNewCodeResponse_ImagenSoloSiSePide(t *testing.T) {
	c := billing.ComplianceCode{Seq: 3, Status: billing.CodeStatusReady, Image: []byte{0x89, 'P', 'N', 'G'}}
	assert.Empty(t, dto.NewCodeResponse(c, false).ImageBase64)
	assert.Equal(t, "iVBORw==", dto.NewCodeResponse(c, true).ImageBase64)
}

func TestNewCurrenciesResponse(t *testing.T) {
	out := dto.NewCurrenciesResponse()
	require.NotEmpty(t, out.Currencies)
	for _, c := range out.Currencies {
		if c.Code == "JPY" {
			assert.Equal(t, int32(0), c.Scale)
		}
	}
}
