// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package planck

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var camera = Params{R1: 16000, B: 1400, F: 1, O: -6622, R2: 0.02}

func TestKelvin(t *testing.T) {
	// Reference values computed independently from the formula.
	data := []struct {
		count   float64
		celsius float64
	}{
		{7000, -90.33333527604321},
		{7500, -67.74543352210515},
		{8000, -53.2213049862325},
		{8500, -42.0028981712492},
		{9000, -32.65471798004458},
	}
	for _, line := range data {
		assert.InDelta(t, line.celsius, camera.Kelvin(line.count)-273.15, 1e-9, "count %g", line.count)
	}
}

func TestKelvinClamp(t *testing.T) {
	// count+O below 1 is treated as exactly 1.
	floor := camera.Kelvin(6623)
	for _, c := range []float64{6623, 6622, 0, -1e9} {
		k := camera.Kelvin(c)
		require.False(t, math.IsNaN(k), "count %g", c)
		assert.Equal(t, floor, k, "count %g", c)
	}
}

func TestCountRoundTrip(t *testing.T) {
	for _, k := range []float64{250, 273.15, 293.15, 310, 400} {
		assert.InDelta(t, k, camera.Kelvin(camera.Count(k)), 1e-9, "%gK", k)
	}
}

func TestForwardInverse(t *testing.T) {
	counts := []float64{7000, 8000, 9000}
	k := camera.Forward(nil, counts)
	require.Len(t, k, 3)
	for i, c := range counts {
		assert.Equal(t, camera.Kelvin(c), k[i])
	}
	back := camera.Inverse(nil, k)
	for i, c := range counts {
		assert.InDelta(t, c, back[i], 1e-6)
	}
	// In place.
	camera.Forward(counts, counts)
	assert.Equal(t, k, counts)
}

func TestForwardDeterministic(t *testing.T) {
	counts := []float64{0, 1, 6623, 8000, 65535}
	assert.Equal(t, camera.Forward(nil, counts), camera.Forward(nil, counts))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, camera.Validate())
	assert.NoError(t, Default.Validate())
	p := camera
	p.R2 = 0
	assert.Error(t, p.Validate())
	p = camera
	p.B = math.NaN()
	assert.Error(t, p.Validate())
	p = camera
	p.B = 0
	assert.Error(t, p.Validate())
}

func TestString(t *testing.T) {
	assert.Equal(t, "R1=16000 B=1400 F=1 O=-6622 R2=0.02", camera.String())
}
