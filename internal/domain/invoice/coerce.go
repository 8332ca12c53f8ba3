package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Cotas de magnitud para cantidades, tarifas y porcentajes.
// Un valor con más de maxIntegerDigits dígitos enteros, con un coeficiente de
// más de maxDigits dígitos o menor que 10^-maxScale se trata como no numérico (→ 0).
// Los decimales más allá de maxScale se truncan.
const (
	maxIntegerDigits = 15
	maxScale         = 12
	maxDigits        = 64
)

// ParseNonNegative convierte la entrada del usuario (tecla a tecla) en un número.
// Política de coerción: vacío, no numérico, negativo o fuera de cota → 0.
// Nunca retorna error. Acepta coma decimal ("12,5") y espacios alrededor.
func ParseNonNegative(raw string) decimal.Decimal {
	return NonNegative(parseInput(raw))
}

func parseInput(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NonNegative recorta negativos y magnitudes fuera de cota a 0.
// Solo inspecciona exponente y número de dígitos, sin reescalar el valor.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	mag := magnitude(d)
	if int64(d.NumDigits()) > maxDigits || mag > maxIntegerDigits || mag <= -maxScale {
		return decimal.Zero
	}
	if d.Exponent() < -maxScale {
		return d.Truncate(maxScale)
	}
	return d
}

// magnitude cantidad de dígitos enteros de d (negativa si d < 0.1).
func magnitude(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

// ClampRate recorta un porcentaje al rango [0,100].
func ClampRate(rate decimal.Decimal) decimal.Decimal {
	if rate.Sign() <= 0 {
		return decimal.Zero
	}
	if magnitude(rate) > 3 {
		return hundred
	}
	rate = NonNegative(rate)
	if rate.GreaterThan(hundred) {
		return hundred
	}
	return rate
}

// ParseRate aplica ClampRate a un porcentaje tecleado; "1e20" queda en 100.
func ParseRate(raw string) decimal.Decimal {
	return ClampRate(parseInput(raw))
}
