// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package batch measures the spots of many FLIR radiometric images.
package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/thermospot/exiftool"
	"github.com/maruel/thermospot/flir"
	"github.com/maruel/thermospot/planck"
	"github.com/maruel/thermospot/radiometry"
	"github.com/maruel/thermospot/report"
	"golang.org/x/sync/errgroup"
)

// Options controls the processing of images.
type Options struct {
	Labels  []string       // Spot labels to report; nil means Sp1..Sp5, empty means none.
	Order   flir.ByteOrder // Byte order of the raw frame.
	Workers int            // Images processed concurrently; defaults to 1.
	Split   int            // Goroutines correcting each frame; 0 or 1 means none.
}

func (o *Options) labels() []string {
	if o.Labels == nil {
		return radiometry.DefaultLabels(radiometry.DefaultSpots)
	}
	return o.Labels
}

// Image is a processed image.
type Image struct {
	Path        string
	Calibration planck.Params
	Environment radiometry.Environment
	Spots       []radiometry.Spot
	Grid        *radiometry.TemperatureGrid
	Result      radiometry.Result
}

// Process reads one image and measures its spots.
func Process(ctx context.Context, r exiftool.Reader, path string, opts Options) (*Image, error) {
	labels := opts.labels()
	meta, err := r.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("%s: empty metadata", filepath.Base(path))
	}
	m := flir.Metadata(meta)
	out := &Image{Path: path}
	if out.Calibration, err = flir.Calibration(m); err != nil {
		return nil, err
	}
	if out.Environment, err = flir.Environment(m); err != nil {
		return nil, err
	}
	b, err := r.Binary(ctx, path, flir.RawTag)
	if err != nil {
		return nil, err
	}
	raw, err := flir.DecodeRaw(b, opts.Order)
	if err != nil {
		return nil, err
	}
	out.Spots = flir.Spots(m, len(labels))
	out.Grid = radiometry.CorrectParallel(raw, out.Calibration, out.Environment, opts.Split)
	out.Result = radiometry.Sample(out.Grid, labels, out.Spots)
	return out, nil
}

// Row processes an image into a report row.
//
// Errors are logged and kept in the row.
func Row(ctx context.Context, r exiftool.Reader, path string, opts Options) (report.Row, *Image) {
	name := filepath.Base(path)
	img, err := Process(ctx, r, path, opts)
	if err != nil {
		log.Printf("%s: %s", name, err)
		return report.Row{Image: name, Result: radiometry.EmptyResult(opts.labels()), Err: err}, nil
	}
	return report.Row{Image: name, Result: img.Result}, img
}

// Run processes all paths and returns one row per path, in the same order.
//
// A failing image doesn't stop the others. done, if not nil, is called as
// each image completes, from multiple goroutines. Run stops scheduling new
// images when ctx is canceled and returns ctx.Err() along with the rows
// processed so far.
func Run(ctx context.Context, r exiftool.Reader, paths []string, opts Options, done func(report.Row, *Image)) ([]report.Row, error) {
	rows := make([]report.Row, len(paths))
	finished := make([]bool, len(paths))
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i := range paths {
		if ctx.Err() != nil {
			break
		}
		i := i
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			row, img := Row(ctx, r, paths[i], opts)
			if ctx.Err() != nil {
				// The image was likely interrupted midway.
				return nil
			}
			rows[i] = row
			finished[i] = true
			if done != nil {
				done(row, img)
			}
			return nil
		})
	}
	_ = eg.Wait()
	out := rows[:0]
	for i := range rows {
		if finished[i] {
			out = append(out, rows[i])
		}
	}
	return out, ctx.Err()
}

// Find returns the .jpg files in dir, sorted.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// IsImage returns true if the file name looks like a FLIR radiometric JPEG.
func IsImage(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".jpg")
}
