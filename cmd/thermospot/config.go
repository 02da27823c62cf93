// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/maruel/thermospot/flir"
	"github.com/maruel/thermospot/radiometry"
)

type config struct {
	Spots     int    // Number of MeasN entries to look up.
	Workers   int    // Images processed concurrently.
	ByteOrder string // "asis" or "swapped".
	Exiftool  string // Path to exiftool; looked up in $PATH if empty.
	Output    string // Default output file.
}

func defaultConfig() config {
	return config{
		Spots:     radiometry.DefaultSpots,
		Workers:   4,
		ByteOrder: flir.AsIs.String(),
		Output:    "thermospot.xlsx",
	}
}

func (c *config) validate() error {
	if c.Spots < 0 {
		return fmt.Errorf("invalid Spots %d", c.Spots)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid Workers %d", c.Workers)
	}
	if _, err := flir.ParseByteOrder(c.ByteOrder); err != nil {
		return err
	}
	return nil
}

// defaultConfigPath returns ~/.config/thermospot/thermospot.json.
func defaultConfigPath() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".config", "thermospot", "thermospot.json")
}

// loadConfig loads the config file if present. Missing fields keep their
// default value.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%s is invalid json: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// writeConfig writes the config file in its normalized form.
func writeConfig(path string, c *config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
