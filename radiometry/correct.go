// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package radiometry converts raw radiometric frames into temperatures.
//
// The conversion removes the radiance reflected by the target, as described
// by its emissivity and the reflected apparent temperature, before running
// the sensor response curve:
//
//	reflected = Count(Tref)
//	corrected = max((raw - (1-e)*reflected) / e, 1)
//	T         = Kelvin(corrected), NaN if T <= 0K
//
// All functions are pure. Degenerate pixels never fail the conversion, they
// are clamped or reported as NaN.
package radiometry

import (
	"image"
	"math"
	"sync"

	"github.com/maruel/thermospot/planck"
	"gonum.org/v1/gonum/mat"
	"periph.io/x/periph/conn/physic"
)

// ZeroCelsius is 0°C in Kelvin.
const ZeroCelsius = 273.15

// Environment describes the scene around the target.
type Environment struct {
	// Emissivity is in (0, 1]. 0 is invalid and is not checked.
	Emissivity float64
	// Reflected is the reflected apparent temperature.
	Reflected physic.Temperature
}

// DefaultEnvironment is used when the image doesn't specify its
// environment.
var DefaultEnvironment = Environment{Emissivity: 1, Reflected: Celsius(20)}

// Celsius converts a temperature in °C into a physic.Temperature.
func Celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(math.Round(c*float64(physic.Celsius)))
}

// ToCelsius returns t in °C.
func ToCelsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius)
}

// Correct converts a raw frame into a temperature grid in °C.
//
// Pixels for which the model yields a temperature at or below 0K are NaN.
func Correct(raw *image.Gray16, p planck.Params, env Environment) *TemperatureGrid {
	c := newCorrector(raw, p, env)
	h, w := c.dims()
	if h == 0 || w == 0 {
		return &TemperatureGrid{}
	}
	d := mat.NewDense(h, w, nil)
	c.temperatures(d, 0, h)
	return &TemperatureGrid{d: d}
}

// CorrectParallel is Correct with the rows split over multiple goroutines.
//
// The result is identical to Correct's.
func CorrectParallel(raw *image.Gray16, p planck.Params, env Environment, workers int) *TemperatureGrid {
	c := newCorrector(raw, p, env)
	h, w := c.dims()
	if h == 0 || w == 0 {
		return &TemperatureGrid{}
	}
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		return Correct(raw, p, env)
	}
	d := mat.NewDense(h, w, nil)
	step := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += step {
		y1 := y0 + step
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			c.temperatures(d, y0, y1)
		}(y0, y1)
	}
	wg.Wait()
	return &TemperatureGrid{d: d}
}

// CorrectedCounts returns the emissivity corrected counts, after clamping,
// that Correct feeds to the sensor response curve.
//
// Returns nil for an empty frame.
func CorrectedCounts(raw *image.Gray16, p planck.Params, env Environment) *mat.Dense {
	c := newCorrector(raw, p, env)
	h, w := c.dims()
	if h == 0 || w == 0 {
		return nil
	}
	d := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		row := d.RawRowView(y)
		for x := range row {
			row[x] = c.count(x, y)
		}
	}
	return d
}

//

type corrector struct {
	raw        *image.Gray16
	p          planck.Params
	reflected  float64 // (1-e) * Count(Tref)
	emissivity float64
}

func newCorrector(raw *image.Gray16, p planck.Params, env Environment) *corrector {
	kelvin := ToCelsius(env.Reflected) + ZeroCelsius
	return &corrector{
		raw:        raw,
		p:          p,
		reflected:  (1 - env.Emissivity) * p.Count(kelvin),
		emissivity: env.Emissivity,
	}
}

func (c *corrector) dims() (int, int) {
	if c.raw == nil {
		return 0, 0
	}
	b := c.raw.Bounds()
	return b.Dy(), b.Dx()
}

// count returns the clamped corrected count at (x, y) relative to the frame
// origin.
func (c *corrector) count(x, y int) float64 {
	b := c.raw.Bounds()
	raw := float64(c.raw.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
	v := (raw - c.reflected) / c.emissivity
	if v < planck.MinCount {
		v = planck.MinCount
	}
	return v
}

// temperatures fills rows [y0, y1) of d with °C values.
func (c *corrector) temperatures(d *mat.Dense, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := d.RawRowView(y)
		for x := range row {
			k := c.p.Kelvin(c.count(x, y))
			if k <= 0 {
				k = math.NaN()
			}
			row[x] = k - ZeroCelsius
		}
	}
}
