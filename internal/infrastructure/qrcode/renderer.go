// Package qrcode implementa billing.CodeRenderer con boombuler/barcode.
package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
)

// DefaultSize lado en píxeles si no se configura otro.
const DefaultSize = 256

// Renderer genera el PNG del QR. Nivel de corrección M: el texto TLV de una
// factura típica cabe sin problema y el código sigue siendo legible impreso.
type Renderer struct {
	size  int
	level qr.ErrorCorrectionLevel
}

var _ billing.CodeRenderer = (*Renderer)(nil)

// NewRenderer construye el renderizador; size <= 0 usa DefaultSize.
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size, level: qr.M}
}

// Size lado de la imagen en píxeles.
func (r *Renderer) Size() int { return r.size }

// RenderPNG codifica content y lo escala a size×size. Es determinista.
func (r *Renderer) RenderPNG(ctx context.Context, content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qrcode: contenido vacío")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, err := qr.Encode(content, r.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: codificar: %w", err)
	}
	if code.Bounds().Dx() > r.size {
		return nil, fmt.Errorf("qrcode: %d módulos no caben en %dpx", code.Bounds().Dx(), r.size)
	}
	scaled, err := barcode.Scale(code, r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: escalar: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrcode: png: %w", err)
	}
	return buf.Bytes(), nil
}
