// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package report tabulates the spot temperatures of many images.
//
// One row is written per image: its name, one column per spot label and the
// mean. Absent readings are empty cells.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/maruel/thermospot/radiometry"
)

// Row is the result for one image.
type Row struct {
	Image  string
	Result radiometry.Result
	Err    error // Set when the image couldn't be processed; Result is then empty.
}

// Writer persists rows. Rows are only guaranteed to be persisted after Flush
// or Close.
type Writer interface {
	Add(r Row) error
	Flush() error
	Close() error
}

// Header returns the column names for labels.
func Header(labels []string) []string {
	out := make([]string, 0, len(labels)+2)
	out = append(out, "Image")
	for _, l := range labels {
		out = append(out, strings.ToUpper(l))
	}
	return append(out, "Mean")
}

// Cells returns the readings of a row in column order, excluding the image
// name.
func Cells(labels []string, r Row) []radiometry.Reading {
	out := make([]radiometry.Reading, 0, len(labels)+1)
	for _, l := range labels {
		out = append(out, r.Result.Get(l))
	}
	return append(out, r.Result.Mean)
}

// Open creates a Writer for path based on its extension: .xlsx, .csv, .db
// or .sqlite.
func Open(path string, labels []string) (Writer, error) {
	var w Writer
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		w, err = NewXLSX(path, labels)
	case ".csv":
		w, err = NewCSV(path, labels)
	case ".db", ".sqlite", ".sqlite3":
		w, err = NewSQLite(path, labels)
	case "":
		return nil, errors.New("report: output file has no extension")
	default:
		return nil, fmt.Errorf("report: unsupported output format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Print writes rows as an aligned text table.
func Print(w io.Writer, labels []string, rows []Row) error {
	t := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(t, strings.Join(Header(labels), "\t")+"\t")
	for _, r := range rows {
		line := []string{r.Image}
		for _, v := range Cells(labels, r) {
			line = append(line, v.String())
		}
		fmt.Fprintln(t, strings.Join(line, "\t")+"\t")
	}
	return t.Flush()
}
