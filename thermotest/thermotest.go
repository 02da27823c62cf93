// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermotest implements fake radiometric images for testing without
// a camera or exiftool.
package thermotest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/maruel/thermospot/planck"
	"github.com/maruel/thermospot/radiometry"
)

// File is the content of a fake radiometric JPEG.
type File struct {
	Metadata map[string]interface{}
	Raw      []byte // PNG encoded raw frame; nil if absent.
}

// Reader is a fake for exiftool.Reader.
type Reader struct {
	mu    sync.Mutex
	files map[string]*File
	calls int
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{files: map[string]*File{}}
}

// Add registers a file. It is looked up by its base name.
func (r *Reader) Add(name string, f *File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[filepath.Base(name)] = f
}

// Names returns the registered file names, sorted.
func (r *Reader) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.files))
	for n := range r.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Calls returns the number of calls to Metadata and Binary.
func (r *Reader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Metadata implements exiftool.Reader.
func (r *Reader) Metadata(ctx context.Context, path string) (map[string]interface{}, error) {
	f, err := r.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return f.Metadata, nil
}

// Binary implements exiftool.Reader.
func (r *Reader) Binary(ctx context.Context, path, tag string) ([]byte, error) {
	f, err := r.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if tag != "RawThermalImage" {
		return nil, nil
	}
	return f.Raw, nil
}

func (r *Reader) get(ctx context.Context, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	f, ok := r.files[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return f, nil
}

// Metadata returns the tags exiftool would report for an image taken with
// these settings.
//
// Numbers are encoded as json.Number and the reflected temperature has its
// " C" suffix, like exiftool's output.
func Metadata(p planck.Params, env radiometry.Environment, spots []radiometry.Spot) map[string]interface{} {
	num := func(f float64) json.Number {
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
	}
	m := map[string]interface{}{
		"PlanckR1":                     num(p.R1),
		"PlanckB":                      num(p.B),
		"PlanckF":                      num(p.F),
		"PlanckO":                      num(p.O),
		"PlanckR2":                     num(p.R2),
		"Emissivity":                   num(env.Emissivity),
		"ReflectedApparentTemperature": strconv.FormatFloat(radiometry.ToCelsius(env.Reflected), 'f', 1, 64) + " C",
	}
	for i, s := range spots {
		idx := s.Index
		if idx == 0 {
			idx = i + 1
		}
		m[fmt.Sprintf("Meas%dLabel", idx)] = s.Label
		m[fmt.Sprintf("Meas%dParams", idx)] = map[string]interface{}{"val": fmt.Sprintf("%d %d", s.X, s.Y)}
	}
	return m
}

// EncodePNG encodes img as exiftool would extract a RawThermalImage.
func EncodePNG(img image.Image) []byte {
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		panic(err)
	}
	return b.Bytes()
}

// Uniform returns a frame where every pixel is v.
func Uniform(w, h int, v uint16) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

//

type vector struct {
	intensity float64
	x         float64
	y         float64
}

// Scene is cheezy but gets us going for testing without a camera.
//
// It renders a few hot and cold blobs over a background count.
type Scene struct {
	Width      int
	Height     int
	Background float64 // Count of the background, e.g. 8192.
	Range      float64 // Maximum deviation from Background.

	rand    *rand.Rand
	vectors []vector
}

// NewScene returns a deterministic scene for a seed.
func NewScene(w, h int, seed int64) *Scene {
	s := &Scene{Width: w, Height: h, Background: 8192, Range: 1024, rand: rand.New(rand.NewSource(seed))}
	s.vectors = make([]vector, 10)
	for i := range s.vectors {
		s.vectors[i].intensity = s.rand.NormFloat64() * 10 * float64(w*h)
		s.vectors[i].x = s.rand.NormFloat64()*float64(w)/6 + float64(w)/2
		s.vectors[i].y = s.rand.NormFloat64()*float64(h)/6 + float64(h)/2
	}
	return s
}

// Update moves the blobs a bit.
func (s *Scene) Update() {
	for i := range s.vectors {
		s.vectors[i].intensity += s.rand.NormFloat64() * 0.1
		s.vectors[i].x += s.rand.NormFloat64() * 0.1
		s.vectors[i].y += s.rand.NormFloat64() * 0.1
	}
}

// Render returns the current raw frame.
func (s *Scene) Render() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		fy := float64(y)
		for x := 0; x < s.Width; x++ {
			fx := float64(x)
			value := s.Background
			for _, v := range s.vectors {
				distance := (v.x-fx)*(v.x-fx) + (v.y-fy)*(v.y-fy) + 1
				value += v.intensity / distance
			}
			if value >= s.Background+s.Range {
				value = s.Background + s.Range
			}
			if value < s.Background-s.Range {
				value = s.Background - s.Range
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(value)})
		}
	}
	return img
}
