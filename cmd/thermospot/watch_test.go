// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDir(t *testing.T) {
	d := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 10)
	errc := make(chan error, 1)
	go func() {
		errc <- watchDir(ctx, d, 50*time.Millisecond, func(p string) { got <- p })
	}()
	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(d, "ignored.txt"), []byte("a"), 0o600))
	want := filepath.Join(d, "IR_0001.jpg")
	require.NoError(t, os.WriteFile(want, []byte("a"), 0o600))
	select {
	case p := <-got:
		assert.Equal(t, want, p)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	assert.Empty(t, got)
}

func TestWatchDirMissing(t *testing.T) {
	err := watchDir(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Second, func(string) {})
	assert.Error(t, err)
}
