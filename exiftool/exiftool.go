// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package exiftool reads image metadata by running Phil Harvey's ExifTool.
//
// References:
//   https://exiftool.org/exiftool_pod.html
//   https://exiftool.org/TagNames/FLIR.html
package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when the exiftool executable cannot be found.
var ErrNotFound = errors.New("exiftool: executable not found")

// Reader reads metadata and embedded binary tags from image files. This
// interface can be mocked.
type Reader interface {
	// Metadata returns all the tags of the file, as decoded from exiftool's
	// JSON output. Numbers are json.Number.
	Metadata(ctx context.Context, path string) (map[string]interface{}, error)
	// Binary returns the raw content of a tag. It returns nil without error
	// if the tag is not present.
	Binary(ctx context.Context, path, tag string) ([]byte, error)
}

// Tool runs the exiftool executable.
type Tool struct {
	path string
}

// New looks up the exiftool executable.
//
// name can be a path or an executable name looked up in $PATH. If empty,
// "exiftool" is used.
func New(name string) (*Tool, error) {
	if name == "" {
		name = "exiftool"
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, err)
	}
	return &Tool{path: p}, nil
}

func (t *Tool) String() string {
	return t.path
}

// Metadata implements Reader.
func (t *Tool) Metadata(ctx context.Context, path string) (map[string]interface{}, error) {
	out, err := t.run(ctx, "-j", "-q", "-S", path)
	if err != nil {
		return nil, err
	}
	return decode(out)
}

// Binary implements Reader.
func (t *Tool) Binary(ctx context.Context, path, tag string) ([]byte, error) {
	out, err := t.run(ctx, "-b", "-"+tag, path)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

//

func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("exiftool %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("exiftool %s: %w", strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// decode parses the output of "exiftool -j", which is a list with one
// object per file.
func decode(b []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]interface{}{}, nil
	}
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	var l []map[string]interface{}
	if err := d.Decode(&l); err != nil {
		return nil, fmt.Errorf("exiftool: invalid json: %w", err)
	}
	if len(l) == 0 {
		return map[string]interface{}{}, nil
	}
	return l[0], nil
}
