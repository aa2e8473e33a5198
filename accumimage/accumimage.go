// Package accumimage is the running sum of every sample a render has taken,
// and its conversion to displayable pixels.
package accumimage

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"lumen/vmath/vec3"
)

// ErrNoSamples is returned when converting an image that has not completed a
// single pass.
var ErrNoSamples = errors.New("image has no completed passes")

// Image holds one colour sum per pixel and the number of passes folded into
// them.  The displayed colour of a pixel is its sum divided by Updates.
//
// Distinct pixels may be updated concurrently.  Everything else needs
// exclusive access.
type Image struct {
	SizeX, SizeY int
	Updates      uint64

	// Sums is row-major: pixel (x, y) is at y*SizeX + x.
	Sums []vec3.T

	// Codec encodes Write output.  Nil means PNG16.
	Codec Codec
}

func New(sizeX, sizeY int) *Image {
	return &Image{
		SizeX: sizeX,
		SizeY: sizeY,
		Sums:  make([]vec3.T, sizeX*sizeY),
	}
}

// UpdatePixel adds c to the sum at (x, y).
func (im *Image) UpdatePixel(x, y int, c vec3.T) {
	idx := y*im.SizeX + x
	im.Sums[idx] = vec3.AddVV(im.Sums[idx], c)
}

// Update records that one more pass has been folded into every pixel.
func (im *Image) Update() {
	im.Updates++
}

// Set overwrites the sum at (x, y).
func (im *Image) Set(x, y int, c vec3.T) {
	im.Sums[y*im.SizeX+x] = c
}

// Sum returns the raw sum at (x, y).
func (im *Image) Sum(x, y int) vec3.T {
	return im.Sums[y*im.SizeX+x]
}

func (im *Image) Reset() {
	for i := range im.Sums {
		im.Sums[i] = vec3.Zero
	}
	im.Updates = 0
}

// Quantize averages every pixel, raises it to gamma, clamps it to [0, 1] and
// scales it to 16 bits.  The result is row-major RGB.
func (im *Image) Quantize(gamma float64) ([]uint16, error) {
	if im.Updates == 0 {
		return nil, ErrNoSamples
	}

	scale := 1.0 / float64(im.Updates)
	pix := make([]uint16, 0, 3*len(im.Sums))
	for _, sum := range im.Sums {
		c := vec3.Clamp(vec3.PowVS(vec3.MulVS(sum, scale), gamma), 0, 1)
		for i := 0; i < 3; i++ {
			pix = append(pix, uint16(math.Round(c[i]*math.MaxUint16)))
		}
	}
	return pix, nil
}

// Write encodes the averaged image to w.
func (im *Image) Write(w io.Writer, gamma float64) error {
	pix, err := im.Quantize(gamma)
	if err != nil {
		return fmt.Errorf("while quantizing: %w", err)
	}

	codec := im.Codec
	if codec == nil {
		codec = PNG16{}
	}
	if err := codec.Save(w, im.SizeX, im.SizeY, 3, pix); err != nil {
		return fmt.Errorf("while encoding: %w", err)
	}
	return nil
}

func (im *Image) WriteFile(name string, gamma float64) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}

	if err := im.Write(f, gamma); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("while closing file: %w", err)
	}
	return nil
}
