package currency

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Format presenta un monto según la moneda: redondea a la unidad menor, agrupa
// miles con coma y antepone el símbolo. Ej: Format("USD", 1234.5) → "$1,234.50".
// Los símbolos alfabéticos (SAR, CHF o un código desconocido) llevan un espacio: "SAR 10.00".
func Format(code string, amount decimal.Decimal) string {
	return FormatWithSymbol(Symbol(code), Scale(code), amount)
}

// FormatAmount igual que Format pero sin símbolo (útil para XML y CSV).
func FormatAmount(code string, amount decimal.Decimal) string {
	return amount.Round(Scale(code)).StringFixed(Scale(code))
}

// FormatWithSymbol formatea con un símbolo y escala explícitos.
func FormatWithSymbol(symbol string, scale int32, amount decimal.Decimal) string {
	fixed := amount.Round(scale).StringFixed(scale)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart)
	if fracPart != "" {
		out += "." + fracPart
	}

	sep := ""
	if isAlphabetic(symbol) {
		sep = " "
	}
	if negative {
		return "-" + symbol + sep + out
	}
	return symbol + sep + out
}

// groupThousands inserta comas de miles en un string numérico sin signo.
// Ej: "25000" → "25,000", "1000000" → "1,000,000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
