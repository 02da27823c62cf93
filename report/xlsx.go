// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package report

import (
	"github.com/xuri/excelize/v2"
)

// XLSX writes rows into the first sheet of an Excel workbook.
//
// The file is rewritten at each Flush.
type XLSX struct {
	path   string
	labels []string
	f      *excelize.File
	sheet  string
	row    int // Last written row, 1-based.
}

// NewXLSX prepares a workbook with the header. Nothing is written to disk
// until Flush or Close.
func NewXLSX(path string, labels []string) (*XLSX, error) {
	f := excelize.NewFile()
	x := &XLSX{path: path, labels: labels, f: f, sheet: f.GetSheetName(0)}
	for i, h := range Header(labels) {
		if err := x.set(i+1, 1, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	x.row = 1
	return x, nil
}

// Add implements Writer.
func (x *XLSX) Add(r Row) error {
	x.row++
	if err := x.set(1, x.row, r.Image); err != nil {
		return err
	}
	for i, v := range Cells(x.labels, r) {
		if c, ok := v.Value(); ok {
			if err := x.set(i+2, x.row, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush implements Writer.
func (x *XLSX) Flush() error {
	return x.f.SaveAs(x.path)
}

// Close implements Writer.
func (x *XLSX) Close() error {
	err := x.Flush()
	if err2 := x.f.Close(); err == nil {
		err = err2
	}
	return err
}

func (x *XLSX) set(col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return x.f.SetCellValue(x.sheet, cell, v)
}
