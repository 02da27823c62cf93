// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package report

import (
	"encoding/csv"
	"io"
	"os"
)

// CSV writes rows as comma separated values.
type CSV struct {
	labels []string
	c      io.Closer
	w      *csv.Writer
}

// NewCSV creates or truncates path and writes the header.
func NewCSV(path string, labels []string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCSVWriter(f, labels)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.c = f
	return c, nil
}

// NewCSVWriter writes the header to w.
func NewCSVWriter(w io.Writer, labels []string) (*CSV, error) {
	c := &CSV{labels: labels, w: csv.NewWriter(w)}
	if err := c.w.Write(Header(labels)); err != nil {
		return nil, err
	}
	return c, nil
}

// Add implements Writer.
func (c *CSV) Add(r Row) error {
	line := []string{r.Image}
	for _, v := range Cells(c.labels, r) {
		line = append(line, v.String())
	}
	return c.w.Write(line)
}

// Flush implements Writer.
func (c *CSV) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close implements Writer.
func (c *CSV) Close() error {
	err := c.Flush()
	if c.c != nil {
		if err2 := c.c.Close(); err == nil {
			err = err2
		}
		c.c = nil
	}
	return err
}
