// Package currency contiene el catálogo de monedas aceptadas por el editor de
// facturas y el formateo de montos para presentación (símbolo + separador de miles).
package currency

import (
	"strings"

	"golang.org/x/text/currency"
)

// Códigos ISO 4217 habilitados en el editor.
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	SAR = "SAR"
	AED = "AED"
	COP = "COP"
	MXN = "MXN"
	INR = "INR"
	JPY = "JPY"
	CAD = "CAD"
	AUD = "AUD"
	CHF = "CHF"
)

// symbols símbolos de presentación por código. Los códigos sin símbolo propio
// se muestran con el código alfabético.
var symbols = map[string]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	SAR: "SAR",
	AED: "AED",
	COP: "COL$",
	MXN: "MX$",
	INR: "₹",
	JPY: "¥",
	CAD: "CA$",
	AUD: "A$",
	CHF: "CHF",
}

// Supported devuelve los códigos habilitados (orden estable para selects del front).
func Supported() []string {
	return []string{USD, EUR, GBP, SAR, AED, COP, MXN, INR, JPY, CAD, AUD, CHF}
}

// IsSupported indica si el código pertenece al catálogo habilitado.
func IsSupported(code string) bool {
	_, ok := symbols[normalize(code)]
	return ok
}

// Symbol devuelve el símbolo de la moneda. Un código desconocido se muestra
// tal como llegó, sin normalizar.
func Symbol(code string) string {
	if s, ok := symbols[normalize(code)]; ok {
		return s
	}
	return code
}

// Scale devuelve la cantidad de decimales de la unidad menor de la moneda
// (2 para USD, 0 para JPY). Si el código no es ISO válido se asume 2.
func Scale(code string) int32 {
	unit, err := currency.ParseISO(normalize(code))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
