// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flir decodes the radiometric data embedded in FLIR JPEG files.
//
// The metadata is expected as decoded from "exiftool -j", e.g.:
//
//	"PlanckR1": 21106.77,
//	"Emissivity": 0.95,
//	"ReflectedApparentTemperature": "20.0 C",
//	"Meas1Label": "Sp1",
//	"Meas1Params": "259 96",
//
// Missing fields use the camera defaults. Values may be wrapped in an object
// as {"val": ...}.
package flir

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/maruel/thermospot/planck"
	"github.com/maruel/thermospot/radiometry"
)

// maxReflected is the highest accepted reflected apparent temperature in °C.
const maxReflected = 1e6

// Metadata is the tags of one image.
type Metadata map[string]interface{}

// Calibration returns the sensor response constants.
func Calibration(m Metadata) (planck.Params, error) {
	p := planck.Default
	var err error
	fields := []struct {
		key string
		v   *float64
	}{
		{"PlanckR1", &p.R1},
		{"PlanckB", &p.B},
		{"PlanckF", &p.F},
		{"PlanckO", &p.O},
		{"PlanckR2", &p.R2},
	}
	for _, f := range fields {
		if *f.v, err = m.Float(f.key, *f.v); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// Environment returns the emissivity and reflected apparent temperature.
func Environment(m Metadata) (radiometry.Environment, error) {
	env := radiometry.DefaultEnvironment
	e, err := m.Float("Emissivity", env.Emissivity)
	if err != nil {
		return env, err
	}
	if !(e > 0 && e <= 1) {
		return env, fmt.Errorf("flir: Emissivity %g is not in (0, 1]", e)
	}
	t, err := m.Float("ReflectedApparentTemperature", radiometry.ToCelsius(env.Reflected))
	if err != nil {
		return env, err
	}
	// physic.Temperature is an int64 of nano-kelvin.
	if !(t > -radiometry.ZeroCelsius && t < maxReflected) {
		return env, fmt.Errorf("flir: ReflectedApparentTemperature %g°C is out of range", t)
	}
	env.Emissivity = e
	env.Reflected = radiometry.Celsius(t)
	return env, nil
}

// Spots returns the measurement spots Meas1 to Meas<n>.
//
// Entries without a label or without coordinates are skipped.
func Spots(m Metadata, n int) []radiometry.Spot {
	var out []radiometry.Spot
	for i := 1; i <= n; i++ {
		params, ok := m.String(fmt.Sprintf("Meas%dParams", i))
		if !ok || params == "" {
			continue
		}
		label, ok := m.String(fmt.Sprintf("Meas%dLabel", i))
		if !ok || label == "" {
			continue
		}
		x, y, err := parseCoords(params)
		if err != nil {
			log.Printf("Meas%dParams: %s", i, err)
			continue
		}
		out = append(out, radiometry.Spot{Index: i, Label: label, X: x, Y: y})
	}
	return out
}

// String returns the value of a tag as a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	if w, ok := v.(map[string]interface{}); ok {
		if v, ok = w["val"]; !ok {
			return "", false
		}
	}
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// Float returns the value of a tag as a number, def if absent.
//
// A trailing " C" unit is ignored.
func (m Metadata) Float(key string, def float64) (float64, error) {
	s, ok := m.String(key)
	if !ok {
		return def, nil
	}
	s = strings.TrimSpace(strings.Replace(s, " C", "", -1))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("flir: %s: %w", key, err)
	}
	return v, nil
}

// parseCoords parses "x y", ignoring extra values like the width and height
// of boxes.
func parseCoords(s string) (int, int, error) {
	f := strings.Fields(s)
	if len(f) < 2 {
		return 0, 0, fmt.Errorf("expected coordinates, got %q", s)
	}
	x, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
