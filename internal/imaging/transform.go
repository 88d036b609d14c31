// Package imaging wraps the deterministic pixel transforms offered by the
// API: mirroring and color inversion. Output is always PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	img "github.com/disintegration/imaging"
)

const (
	FlipHorizontal = "horizontal"
	FlipVertical   = "vertical"
)

// ValidFlipType reports whether value is an allowed flip direction.
func ValidFlipType(value string) bool {
	return value == FlipHorizontal || value == FlipVertical
}

// Flip mirrors the image left-right (horizontal) or top-bottom (vertical).
func Flip(data []byte, flipType string) ([]byte, error) {
	src, err := decode(data)
	if err != nil {
		return nil, err
	}

	var flipped image.Image
	switch flipType {
	case FlipHorizontal:
		flipped = img.FlipH(src)
	case FlipVertical:
		flipped = img.FlipV(src)
	default:
		return nil, fmt.Errorf("invalid flip_type: %q", flipType)
	}

	return encodePNG(flipped)
}

// Invert negates every color channel, leaving alpha untouched.
func Invert(data []byte) ([]byte, error) {
	src, err := decode(data)
	if err != nil {
		return nil, err
	}

	return encodePNG(img.Invert(src))
}

func decode(data []byte) (image.Image, error) {
	src, err := img.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return src, nil
}

func encodePNG(m image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := img.Encode(&buf, m, img.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
