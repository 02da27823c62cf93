// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package radiometry

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// DefaultSpots is the number of spots looked up in an image by default.
const DefaultSpots = 5

// Status describes why a Reading has a value or not.
type Status uint8

// Valid values for Status.
const (
	Missing     Status = 0 // The image didn't define this spot.
	Present     Status = 1 // Celsius is valid.
	OutOfBounds Status = 2 // The spot coordinates are outside the frame.
	Invalid     Status = 3 // The pixel at the spot has no valid temperature.
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "Missing"
	case Present:
		return "Present"
	case OutOfBounds:
		return "OutOfBounds"
	case Invalid:
		return "Invalid"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Reading is a temperature that may be absent.
type Reading struct {
	Status  Status
	Celsius float64 // Only meaningful when Status is Present.
}

// Value returns the temperature and true if present.
func (r Reading) Value() (float64, bool) {
	return r.Celsius, r.Status == Present
}

// String returns the temperature with one decimal, or an empty string.
func (r Reading) String() string {
	if r.Status != Present {
		return ""
	}
	return strconv.FormatFloat(r.Celsius, 'f', 1, 64)
}

// Spot is a named measurement point.
type Spot struct {
	Index int    // 1-based position in the metadata, 0 if unknown.
	Label string // e.g. "Sp1".
	X     int    // Column.
	Y     int    // Row.
}

func (s Spot) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Label, s.X, s.Y)
}

// Result is the temperatures at the spots of one image.
type Result struct {
	Labels []string           // Ordered labels, e.g. "Sp1".."Sp5".
	Spots  map[string]Reading // Keyed by label; labels not found are Missing.
	Mean   Reading            // Mean of the present spots.
}

// Get returns the reading for a label.
func (r *Result) Get(label string) Reading {
	return r.Spots[label]
}

// Readings returns the readings in Labels order.
func (r *Result) Readings() []Reading {
	out := make([]Reading, len(r.Labels))
	for i, l := range r.Labels {
		out[i] = r.Spots[l]
	}
	return out
}

// DefaultLabels returns "Sp1" to "Sp<n>".
func DefaultLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "Sp" + strconv.Itoa(i+1)
	}
	return out
}

// EmptyResult returns a Result where every reading is Missing.
func EmptyResult(labels []string) Result {
	return Result{Labels: labels, Spots: map[string]Reading{}}
}

// Sample reads the temperature at each spot.
//
// A spot whose label isn't one of labels is stored as "Sp<Index>" instead,
// and dropped if that isn't a label either. When two spots resolve to the
// same label, the last present reading wins; a spot without a value never
// replaces a reading already stored.
func Sample(g *TemperatureGrid, labels []string, spots []Spot) Result {
	out := EmptyResult(labels)
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}
	for _, s := range spots {
		name := s.Label
		if !known[name] {
			name = "Sp" + strconv.Itoa(s.Index)
			if !known[name] {
				continue
			}
		}
		r := read(g, s.X, s.Y)
		if _, ok := out.Spots[name]; ok && r.Status != Present {
			continue
		}
		out.Spots[name] = r
	}
	out.Mean = mean(out.Readings())
	return out
}

// Round1 rounds v to one decimal, ties to even.
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func read(g *TemperatureGrid, x, y int) Reading {
	if !g.In(x, y) {
		return Reading{Status: OutOfBounds}
	}
	v := g.At(x, y)
	if math.IsNaN(v) {
		return Reading{Status: Invalid}
	}
	return Reading{Status: Present, Celsius: Round1(v)}
}

func mean(r []Reading) Reading {
	var values []float64
	for _, v := range r {
		if c, ok := v.Value(); ok {
			values = append(values, c)
		}
	}
	if len(values) == 0 {
		return Reading{Status: Missing}
	}
	return Reading{Status: Present, Celsius: Round1(stat.Mean(values, nil))}
}
