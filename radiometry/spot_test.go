// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package radiometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// grid is 3 columns by 2 rows.
func grid() *TemperatureGrid {
	return NewTemperatureGrid(mat.NewDense(2, 3, []float64{
		30.04, 31.06, math.NaN(),
		32.0, 29.95, -4.25,
	}))
}

func TestSample(t *testing.T) {
	spots := []Spot{
		{Index: 1, Label: "Sp1", X: 0, Y: 0},
		{Index: 2, Label: "Sp2", X: 1, Y: 0},
		{Index: 3, Label: "Sp3", X: 2, Y: 0},
		{Index: 4, Label: "Sp4", X: 3, Y: 1},
	}
	got := Sample(grid(), DefaultLabels(5), spots)
	want := Result{
		Labels: []string{"Sp1", "Sp2", "Sp3", "Sp4", "Sp5"},
		Spots: map[string]Reading{
			"Sp1": {Status: Present, Celsius: 30},
			"Sp2": {Status: Present, Celsius: 31.1},
			"Sp3": {Status: Invalid},
			"Sp4": {Status: OutOfBounds},
		},
		Mean: Reading{Status: Present, Celsius: 30.6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Sample() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Missing, got.Get("Sp5").Status)
}

func TestSampleBounds(t *testing.T) {
	g := grid()
	data := []struct {
		x, y int
		want Status
	}{
		{0, 0, Present},
		{2, 1, Present},
		{1, 1, Present},
		{3, 0, OutOfBounds},
		{0, 2, OutOfBounds},
		{-1, 0, OutOfBounds},
		{0, -1, OutOfBounds},
	}
	for _, line := range data {
		r := Sample(g, []string{"a"}, []Spot{{Label: "a", X: line.x, Y: line.y}})
		assert.Equal(t, line.want, r.Get("a").Status, "(%d,%d)", line.x, line.y)
		if line.want == Present {
			assert.Equal(t, Round1(g.At(line.x, line.y)), r.Get("a").Celsius)
		}
	}
}

func TestSampleLabels(t *testing.T) {
	labels := DefaultLabels(3)
	spots := []Spot{
		{Index: 2, Label: "Hot spot", X: 0, Y: 1},
		{Index: 7, Label: "Unknown", X: 0, Y: 0},
		{Index: 3, Label: "Sp1", X: 1, Y: 1},
	}
	r := Sample(grid(), labels, spots)
	assert.Equal(t, Reading{Status: Present, Celsius: 32}, r.Get("Sp2"))
	assert.Equal(t, Reading{Status: Present, Celsius: 30}, r.Get("Sp1"))
	assert.Equal(t, Missing, r.Get("Sp3").Status)
	assert.Len(t, r.Spots, 2)
}

func TestSampleDuplicateLabels(t *testing.T) {
	labels := DefaultLabels(2)
	// The first Sp1 is read, the second is outside the grid.
	r := Sample(grid(), labels, []Spot{
		{Index: 1, Label: "Sp1", X: 0, Y: 0},
		{Index: 2, Label: "Sp1", X: 9, Y: 9},
	})
	assert.Equal(t, Reading{Status: Present, Celsius: 30}, r.Get("Sp1"))
	assert.Equal(t, Reading{Status: Present, Celsius: 30}, r.Mean)

	// A later present reading replaces an earlier one.
	r = Sample(grid(), labels, []Spot{
		{Index: 1, Label: "Sp2", X: 2, Y: 0},
		{Index: 2, Label: "Sp2", X: 0, Y: 1},
		{Index: 3, Label: "Sp2", X: 1, Y: 0},
	})
	assert.Equal(t, Reading{Status: Present, Celsius: 31.1}, r.Get("Sp2"))

	// Without any value, the first status is kept.
	r = Sample(grid(), labels, []Spot{
		{Index: 1, Label: "Sp1", X: 2, Y: 0},
		{Index: 2, Label: "Sp1", X: -1, Y: 0},
	})
	assert.Equal(t, Invalid, r.Get("Sp1").Status)
	assert.Equal(t, Missing, r.Mean.Status)
}

func TestRound1(t *testing.T) {
	data := []struct {
		in, want float64
	}{
		{-4.25, -4.2},
		{-4.35, -4.4},
		{0.25, 0.2},
		{0.75, 0.8},
		{29.95, 30},
		{31.06, 31.1},
		{-60.94947191243631, -60.9},
	}
	for _, line := range data {
		assert.Equal(t, line.want, Round1(line.in), "%g", line.in)
	}
}

func TestMean(t *testing.T) {
	g := NewTemperatureGrid(mat.NewDense(1, 2, []float64{30, 32}))
	r := Sample(g, DefaultLabels(2), []Spot{
		{Index: 1, Label: "Sp1", X: 0, Y: 0},
		{Index: 2, Label: "Sp2", X: 1, Y: 0},
	})
	assert.Equal(t, Reading{Status: Present, Celsius: 31}, r.Mean)

	r = Sample(g, DefaultLabels(2), nil)
	assert.Equal(t, Missing, r.Mean.Status)
	assert.Equal(t, "", r.Mean.String())
}

func TestDefaultLabels(t *testing.T) {
	assert.Equal(t, []string{"Sp1", "Sp2", "Sp3", "Sp4", "Sp5"}, DefaultLabels(DefaultSpots))
	assert.Empty(t, DefaultLabels(0))
}

func TestReadingString(t *testing.T) {
	assert.Equal(t, "31.0", Reading{Status: Present, Celsius: 31}.String())
	assert.Equal(t, "-4.2", Reading{Status: Present, Celsius: Round1(-4.25)}.String())
	assert.Equal(t, "", Reading{Status: OutOfBounds, Celsius: 12}.String())
	assert.Equal(t, "Invalid", Invalid.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestGray(t *testing.T) {
	img := grid().Gray()
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	// Min is -4.25, max is 32.
	assert.Equal(t, uint8(0), img.GrayAt(2, 1).Y)
	assert.Equal(t, uint8(255), img.GrayAt(0, 1).Y)
	// NaN is black.
	assert.Equal(t, uint8(0), img.GrayAt(2, 0).Y)
	assert.Equal(t, -4.25, grid().Min())
	assert.Equal(t, 32., grid().Max())
}
