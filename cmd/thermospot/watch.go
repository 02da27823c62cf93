// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/maruel/thermospot/batch"
	fsnotify "gopkg.in/fsnotify.v1"
)

// watchDir calls fn for each image created or modified in dir, once it
// hasn't changed for settle.
//
// Cameras and file copies write in multiple steps so an image is only
// considered complete after it stays unmodified for a while.
func watchDir(ctx context.Context, dir string, settle time.Duration, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err = watcher.Add(dir); err != nil {
		return err
	}
	pending := map[string]time.Time{}
	t := time.NewTicker(settle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err = <-watcher.Errors:
			return err
		case e := <-watcher.Events:
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && batch.IsImage(e.Name) {
				pending[e.Name] = time.Now()
			}
		case now := <-t.C:
			for name, last := range pending {
				if now.Sub(last) >= settle {
					delete(pending, name)
					fn(name)
				}
			}
		}
	}
}
