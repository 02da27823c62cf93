// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package planck implements the sensor response curve of FLIR radiometric
// cameras.
//
// The camera stores 5 constants per image (PlanckR1, PlanckB, PlanckF,
// PlanckO and PlanckR2) describing the relation between the raw digital
// count of a pixel and the absolute temperature of the radiating surface:
//
//	T = B / ln(R1 / (R2 * (count + O)) + F)
//
// References:
// ExifTool FLIR tags:
//   https://exiftool.org/TagNames/FLIR.html
// Raw to temperature conversion discussion:
//   https://exiftool.org/forum/index.php?topic=4898.0
package planck

import (
	"errors"
	"fmt"
	"math"
)

// MinCount is the smallest value of count+O fed to the logarithm.
//
// Anything lower is considered to be at the floor of the model.
const MinCount = 1.

// Params are the calibration constants of a single image.
type Params struct {
	R1 float64
	B  float64
	F  float64
	O  float64
	R2 float64
}

// Default is what is used when the metadata doesn't specify the constants.
var Default = Params{R1: 1, B: 1, F: 1, O: 0, R2: 1}

func (p Params) String() string {
	return fmt.Sprintf("R1=%g B=%g F=%g O=%g R2=%g", p.R1, p.B, p.F, p.O, p.R2)
}

// Validate returns an error if the constants cannot describe a response
// curve.
//
// Kelvin and Count do not call it; it is meant for the code parsing
// metadata.
func (p Params) Validate() error {
	for _, v := range []float64{p.R1, p.B, p.F, p.O, p.R2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("planck: non-finite constant in %s", p)
		}
	}
	if p.R2 == 0 {
		return errors.New("planck: R2 must not be 0")
	}
	if p.B == 0 {
		return errors.New("planck: B must not be 0")
	}
	return nil
}

// Kelvin converts a raw count into an absolute temperature in Kelvin.
//
// count+O is clamped to MinCount before the logarithm so the result is
// always defined for valid constants.
func (p Params) Kelvin(count float64) float64 {
	v := count + p.O
	if v < MinCount {
		v = MinCount
	}
	return p.B / math.Log(p.R1/(p.R2*v)+p.F)
}

// Count converts an absolute temperature in Kelvin into the raw count the
// sensor would report for it.
//
// It is the inverse of Kelvin for counts above the clamp.
func (p Params) Count(kelvin float64) float64 {
	return (p.R1/(math.Exp(p.B/kelvin)-p.F))/p.R2 - p.O
}

// Forward runs Kelvin on each item of counts.
//
// The result is stored in dst if it has the right length, otherwise a new
// slice is allocated. dst and counts may be the same slice.
func (p Params) Forward(dst, counts []float64) []float64 {
	dst = resize(dst, len(counts))
	for i, c := range counts {
		dst[i] = p.Kelvin(c)
	}
	return dst
}

// Inverse runs Count on each item of kelvins.
//
// Same allocation rules as Forward.
func (p Params) Inverse(dst, kelvins []float64) []float64 {
	dst = resize(dst, len(kelvins))
	for i, k := range kelvins {
		dst[i] = p.Count(k)
	}
	return dst
}

func resize(dst []float64, l int) []float64 {
	if len(dst) != l {
		return make([]float64, l)
	}
	return dst
}
