// Package compliance: codificación del resumen fiscal que va dentro del código QR
// de la factura electrónica (esquema TLV: tag-length-value, luego Base64).
//
// Tags (orden estricto):
//
//	1 = Nombre del vendedor
//	2 = Número de registro fiscal (VAT / NIT) del vendedor
//	3 = Fecha y hora de emisión (ISO-8601)
//	4 = Total de la factura (con impuestos)
//	5 = Total del impuesto
package compliance

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Tags TLV del resumen fiscal.
const (
	TagSellerName  byte = 1
	TagSellerTaxID byte = 2
	TagTimestamp   byte = 3
	TagGrandTotal  byte = 4
	TagTaxAmount   byte = 5
)

// maxValueLen el campo length del TLV es un solo byte.
const maxValueLen = 255

var (
	// ErrPayloadMalformed faltan campos obligatorios o el Base64/TLV está corrupto.
	ErrPayloadMalformed = errors.New("compliance: resumen fiscal mal formado")
	// ErrPayloadTooLarge algún valor excede la longitud permitida por el TLV.
	ErrPayloadTooLarge = errors.New("compliance: valor excede 255 bytes")
)

// Fields valores ya formateados del resumen fiscal (montos como string de precisión fija).
type Fields struct {
	SellerName  string
	SellerTaxID string
	Timestamp   string
	GrandTotal  string
	TaxAmount   string
}

// EncodeTLV serializa los campos en TLV y devuelve el texto Base64 que se pone en el QR.
func EncodeTLV(f Fields) (string, error) {
	if strings.TrimSpace(f.SellerName) == "" || strings.TrimSpace(f.SellerTaxID) == "" {
		return "", fmt.Errorf("%w: vendedor y registro fiscal son obligatorios", ErrPayloadMalformed)
	}
	if f.Timestamp == "" || f.GrandTotal == "" || f.TaxAmount == "" {
		return "", fmt.Errorf("%w: fecha y totales son obligatorios", ErrPayloadMalformed)
	}

	values := []struct {
		tag byte
		val string
	}{
		{TagSellerName, f.SellerName},
		{TagSellerTaxID, f.SellerTaxID},
		{TagTimestamp, f.Timestamp},
		{TagGrandTotal, f.GrandTotal},
		{TagTaxAmount, f.TaxAmount},
	}

	buf := make([]byte, 0, 128)
	for _, v := range values {
		raw := []byte(v.val)
		if len(raw) > maxValueLen {
			return "", fmt.Errorf("%w: tag %d tiene %d bytes", ErrPayloadTooLarge, v.tag, len(raw))
		}
		buf = append(buf, v.tag, byte(len(raw)))
		buf = append(buf, raw...)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DecodeTLV es la operación inversa de EncodeTLV (verificación del QR).
func DecodeTLV(encoded string) (Fields, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: base64: %v", ErrPayloadMalformed, err)
	}
	var f Fields
	for i := 0; i < len(raw); {
		if i+2 > len(raw) {
			return Fields{}, fmt.Errorf("%w: TLV truncado en %d", ErrPayloadMalformed, i)
		}
		tag, n := raw[i], int(raw[i+1])
		i += 2
		if i+n > len(raw) {
			return Fields{}, fmt.Errorf("%w: valor del tag %d truncado", ErrPayloadMalformed, tag)
		}
		val := string(raw[i : i+n])
		i += n
		switch tag {
		case TagSellerName:
			f.SellerName = val
		case TagSellerTaxID:
			f.SellerTaxID = val
		case TagTimestamp:
			f.Timestamp = val
		case TagGrandTotal:
			f.GrandTotal = val
		case TagTaxAmount:
			f.TaxAmount = val
		}
	}
	return f, nil
}
