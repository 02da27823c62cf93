// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	m, err := decode([]byte(`[{"SourceFile":"a.jpg","PlanckR1":21106.77,"Emissivity":"0.95","Meas1Params":{"val":"259 96"}}]`))
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", m["SourceFile"])
	assert.Equal(t, json.Number("21106.77"), m["PlanckR1"])
	assert.Equal(t, "0.95", m["Emissivity"])
	assert.Equal(t, map[string]interface{}{"val": "259 96"}, m["Meas1Params"])
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "  \n", "[]"} {
		m, err := decode([]byte(in))
		require.NoError(t, err, "%q", in)
		assert.Empty(t, m, "%q", in)
	}
	_, err := decode([]byte("{"))
	assert.Error(t, err)
}

func TestNewNotFound(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, ErrNotFound), "%v", err)
}

// fakeTool writes a shell script that mimics exiftool.
func fakeTool(t *testing.T, script string) *Tool {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "exiftool")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755))
	tool, err := New(p)
	require.NoError(t, err)
	return tool
}

func TestToolMetadata(t *testing.T) {
	tool := fakeTool(t, `echo '[{"SourceFile":"'"$4"'","PlanckO":-6622}]'`+"\n")
	m, err := tool.Metadata(context.Background(), "img.jpg")
	require.NoError(t, err)
	assert.Equal(t, "img.jpg", m["SourceFile"])
	assert.Equal(t, json.Number("-6622"), m["PlanckO"])
}

func TestToolBinary(t *testing.T) {
	tool := fakeTool(t, `if [ "$2" = "-RawThermalImage" ]; then printf 'RAW'; fi`+"\n")
	b, err := tool.Binary(context.Background(), "img.jpg", "RawThermalImage")
	require.NoError(t, err)
	assert.Equal(t, []byte("RAW"), b)
	b, err = tool.Binary(context.Background(), "img.jpg", "EmbeddedImage")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestToolFailure(t *testing.T) {
	tool := fakeTool(t, "echo 'Error: File not found' >&2\nexit 1\n")
	_, err := tool.Metadata(context.Background(), "img.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found")
}

func TestToolCanceled(t *testing.T) {
	tool := fakeTool(t, "sleep 10\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tool.Metadata(ctx, "img.jpg")
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}
