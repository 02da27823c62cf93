// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package report

import (
	"errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot charts the spots and their mean per image.
//
// The X axis is the row index. Absent readings leave a gap. The format is
// deduced from the extension of path, e.g. .png, .svg or .pdf.
func Plot(path string, labels []string, rows []Row) error {
	if len(rows) == 0 {
		return errors.New("report: nothing to plot")
	}
	p := plot.New()
	p.Title.Text = "Spot temperatures"
	p.X.Label.Text = "Image"
	p.Y.Label.Text = "°C"
	p.Add(plotter.NewGrid())

	for i, l := range labels {
		pts := series(rows, func(r Row) (float64, bool) { return r.Result.Get(l).Value() })
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.Color = plotutil.Color(i)
		s.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(l, s)
	}
	if pts := series(rows, func(r Row) (float64, bool) { return r.Result.Mean.Value() }); len(pts) != 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("Mean", line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

func series(rows []Row, get func(Row) (float64, bool)) plotter.XYs {
	var out plotter.XYs
	for i, r := range rows {
		if v, ok := get(r); ok {
			out = append(out, plotter.XY{X: float64(i), Y: v})
		}
	}
	return out
}
