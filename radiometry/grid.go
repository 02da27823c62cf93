// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package radiometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TemperatureGrid is a frame of temperatures in °C.
//
// It has the same dimensions as the raw frame it was computed from. Invalid
// pixels are NaN.
type TemperatureGrid struct {
	d *mat.Dense // nil when empty.
}

// NewTemperatureGrid wraps a matrix of °C values, rows being the image
// lines.
func NewTemperatureGrid(d *mat.Dense) *TemperatureGrid {
	return &TemperatureGrid{d: d}
}

// Dims returns the height and width of the grid.
func (t *TemperatureGrid) Dims() (int, int) {
	if t.d == nil {
		return 0, 0
	}
	return t.d.Dims()
}

// In returns true if (x, y) is within the grid.
func (t *TemperatureGrid) In(x, y int) bool {
	h, w := t.Dims()
	return x >= 0 && x < w && y >= 0 && y < h
}

// At returns the temperature at column x and row y. It panics if out of
// bounds.
func (t *TemperatureGrid) At(x, y int) float64 {
	return t.d.At(y, x)
}

// Dense returns the underlying matrix. It is nil for an empty grid.
func (t *TemperatureGrid) Dense() *mat.Dense {
	return t.d
}

// Min returns the lowest finite temperature, NaN if there is none.
func (t *TemperatureGrid) Min() float64 {
	return t.reduce(func(a, b float64) bool { return a < b })
}

// Max returns the highest finite temperature, NaN if there is none.
func (t *TemperatureGrid) Max() float64 {
	return t.reduce(func(a, b float64) bool { return a > b })
}

// Gray reduces the dynamic range of the grid down to 8 bits very naively.
//
// Invalid pixels are black.
func (t *TemperatureGrid) Gray() *image.Gray {
	h, w := t.Dims()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	floor := t.Min()
	delta := t.Max() - floor
	if math.IsNaN(floor) || delta == 0 {
		return dst
	}
	for y := 0; y < h; y++ {
		row := t.d.RawRowView(y)
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			f := (v - floor) * 255 / delta
			if f > 255 {
				f = 255
			} else if f < 0 {
				f = 0
			}
			dst.Pix[dst.Stride*y+x] = uint8(f)
		}
	}
	return dst
}

func (t *TemperatureGrid) reduce(better func(a, b float64) bool) float64 {
	out := math.NaN()
	h, _ := t.Dims()
	for y := 0; y < h; y++ {
		for _, v := range t.d.RawRowView(y) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if math.IsNaN(out) || better(v, out) {
				out = v
			}
		}
	}
	return out
}
