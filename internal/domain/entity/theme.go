package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ThemeSnapshot apariencia del documento impreso. Se pasa explícitamente a los
// renderizadores; los cálculos de la factura no la leen.
type ThemeSnapshot struct {
	PrimaryColor string `json:"primary_color"` // #RRGGBB
	AccentColor  string `json:"accent_color"`
	TextColor    string `json:"text_color"`
	FontFamily   string `json:"font_family"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// DefaultTheme tema por defecto (azul corporativo).
func DefaultTheme() ThemeSnapshot {
	return ThemeSnapshot{
		PrimaryColor: "#00467F",
		AccentColor:  "#646464",
		TextColor:    "#1F1F1F",
		FontFamily:   "helvetica",
	}
}

// WithDefaults completa los campos vacíos con el tema por defecto.
func (t ThemeSnapshot) WithDefaults() ThemeSnapshot {
	d := DefaultTheme()
	if t.PrimaryColor == "" {
		t.PrimaryColor = d.PrimaryColor
	}
	if t.AccentColor == "" {
		t.AccentColor = d.AccentColor
	}
	if t.TextColor == "" {
		t.TextColor = d.TextColor
	}
	if t.FontFamily == "" {
		t.FontFamily = d.FontFamily
	}
	return t
}

// ParseHexColor convierte "#RRGGBB" (o "RRGGBB") en componentes RGB.
func ParseHexColor(s string) (r, g, b int, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("color %q: se esperan 6 dígitos hexadecimales", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("color %q: %w", s, err)
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), nil
}
