package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outfit-studio-backend/internal/imaging"
)

func encodePNG(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	m, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return m
}

func TestFlipHorizontal(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)

	out, err := imaging.Flip(encodePNG(t, src), imaging.FlipHorizontal)
	require.NoError(t, err)

	flipped := decodePNG(t, out)
	assert.Equal(t, blue, color.NRGBAModel.Convert(flipped.At(0, 0)))
	assert.Equal(t, red, color.NRGBAModel.Convert(flipped.At(1, 0)))
}

func TestFlipVertical(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	top := color.NRGBA{G: 255, A: 255}
	bottom := color.NRGBA{R: 255, B: 255, A: 255}
	src.SetNRGBA(0, 0, top)
	src.SetNRGBA(0, 1, bottom)

	out, err := imaging.Flip(encodePNG(t, src), imaging.FlipVertical)
	require.NoError(t, err)

	flipped := decodePNG(t, out)
	assert.Equal(t, bottom, color.NRGBAModel.Convert(flipped.At(0, 0)))
	assert.Equal(t, top, color.NRGBAModel.Convert(flipped.At(0, 1)))
}

func TestFlip_InvalidType(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	_, err := imaging.Flip(encodePNG(t, src), "diagonal")
	assert.Error(t, err)
}

func TestFlip_InvalidImage(t *testing.T) {
	_, err := imaging.Flip([]byte("not an image"), imaging.FlipHorizontal)
	assert.Error(t, err)
}

func TestInvert(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := imaging.Invert(encodePNG(t, src))
	require.NoError(t, err)

	inverted := decodePNG(t, out)
	got := color.NRGBAModel.Convert(inverted.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 255}, got)
}

func TestValidFlipType(t *testing.T) {
	assert.True(t, imaging.ValidFlipType(imaging.FlipHorizontal))
	assert.True(t, imaging.ValidFlipType(imaging.FlipVertical))
	assert.False(t, imaging.ValidFlipType(""))
	assert.False(t, imaging.ValidFlipType("diagonal"))
}
