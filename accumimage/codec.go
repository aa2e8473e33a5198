package accumimage

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Codec serializes quantized, row-major, interleaved pixel data.
type Codec interface {
	Save(w io.Writer, width, height, channels int, pix []uint16) error
}

// PNG16 writes 16-bit-per-channel PNGs.  It accepts 1 (grey), 3 (RGB) or 4
// (RGBA) channels.
type PNG16 struct{}

func (PNG16) Save(w io.Writer, width, height, channels int, pix []uint16) error {
	if len(pix) != width*height*channels {
		return fmt.Errorf("got %d samples for a %dx%dx%d image", len(pix), width, height, channels)
	}

	var img image.Image
	switch channels {
	case 1:
		gray := image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				gray.SetGray16(x, y, color.Gray16{Y: pix[y*width+x]})
			}
		}
		img = gray
	case 3, 4:
		rgba := image.NewNRGBA64(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				p := pix[(y*width+x)*channels:]
				c := color.NRGBA64{R: p[0], G: p[1], B: p[2], A: 0xffff}
				if channels == 4 {
					c.A = p[3]
				}
				rgba.SetNRGBA64(x, y, c)
			}
		}
		img = rgba
	default:
		return fmt.Errorf("unsupported channel count %d", channels)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}
