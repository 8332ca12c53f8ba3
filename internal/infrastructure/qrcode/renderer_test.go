package qrcode_test

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/infrastructure/qrcode"
)

const sampleTLV = "AQxCb2JzIFJlY29yZHMCDzMxMDEyMjM5MzUwMDAwMwMUMjAyMi0wNC0yNVQxNTozMDowMFoEBzEwMDAuMDAFBjE1MC4wMA=="

func TestRenderer_GeneraPNGDelTamaño(t *testing.T) {
	r := qrcode.NewRenderer(200)
	b, err := r.RenderPNG(context.Background(), sampleTLV)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderer_Determinista(t *testing.T) {
	r := qrcode.NewRenderer(0)
	assert.Equal(t, qrcode.DefaultSize, r.Size())

	a, err := r.RenderPNG(context.Background(), sampleTLV)
	require.NoError(t, err)
	b, err := r.RenderPNG(context.Background(), sampleTLV)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := r.RenderPNG(context.Background(), sampleTLV[:40])
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestRenderer_Errores(t *testing.T) {
	r := qrcode.NewRenderer(128)

	_, err := r.RenderPNG(context.Background(), "")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RenderPNG(ctx, sampleTLV)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = qrcode.NewRenderer(10).RenderPNG(context.Background(), sampleTLV)
	assert.Error(t, err, "un QR más grande que la imagen no se puede escalar")
}
