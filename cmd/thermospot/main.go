// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// thermospot measures the spot temperatures of FLIR radiometric JPEGs in a
// folder and writes them to a spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/maruel/interrupt"
	"github.com/maruel/thermospot/batch"
	"github.com/maruel/thermospot/exiftool"
	"github.com/maruel/thermospot/flir"
	"github.com/maruel/thermospot/planck"
	"github.com/maruel/thermospot/radiometry"
	"github.com/maruel/thermospot/report"
	"github.com/maruel/thermospot/thermotest"
)

// fakeReader returns n synthetic images named fake0001.jpg and so on.
func fakeReader(n int) (exiftool.Reader, []string) {
	r := thermotest.NewReader()
	p := planck.Params{R1: 16000, B: 1400, F: 1, O: -6622, R2: 0.02}
	env := radiometry.Environment{Emissivity: 0.95, Reflected: radiometry.Celsius(20)}
	spots := []radiometry.Spot{
		{Index: 1, Label: "Sp1", X: 40, Y: 30},
		{Index: 2, Label: "Sp2", X: 10, Y: 10},
		{Index: 3, Label: "Sp3", X: 70, Y: 50},
	}
	s := thermotest.NewScene(80, 60, 1)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("fake%04d.jpg", i+1)
		r.Add(paths[i], &thermotest.File{
			Metadata: thermotest.Metadata(p, env, spots),
			Raw:      thermotest.EncodePNG(s.Render()),
		})
		s.Update()
	}
	return r, paths
}

func mainImpl() error {
	cpuprofile := flag.String("cpuprofile", "", "dump CPU profile in file")
	configPath := flag.String("config", defaultConfigPath(), "config file")
	writeCfg := flag.Bool("writeConfig", false, "write the config file with the effective values and exit")
	output := flag.String("o", "", "output file; .xlsx, .csv, .db or .sqlite")
	chart := flag.String("plot", "", "also chart the temperatures per image in this .png, .svg or .pdf file")
	spots := flag.Int("n", 0, "number of spots to report")
	workers := flag.Int("j", 0, "images processed concurrently")
	order := flag.String("byteorder", "", "byte order of the raw frame: asis or swapped")
	tool := flag.String("exiftool", "", "path to exiftool")
	watch := flag.Bool("watch", false, "keep running and process new images as they appear")
	port := flag.Int("http", 0, "http port to show the measurements on; disabled if 0")
	fake := flag.Int("fake", 0, "process this many synthetic images instead of a folder")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: thermospot [flags] <folder>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(log.Lmicroseconds)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// Flags explicitly set override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *output
		case "n":
			cfg.Spots = *spots
		case "j":
			cfg.Workers = *workers
		case "byteorder":
			cfg.ByteOrder = *order
		case "exiftool":
			cfg.Exiftool = *tool
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}
	if *writeCfg {
		return writeConfig(*configPath, &cfg)
	}

	dir := ""
	if *fake == 0 {
		if flag.NArg() != 1 {
			flag.Usage()
			return errors.New("expected a folder")
		}
		dir = flag.Arg(0)
	} else if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	interrupt.HandleCtrlC()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupt.Channel:
			cancel()
		case <-ctx.Done():
		}
	}()

	byteOrder, _ := flir.ParseByteOrder(cfg.ByteOrder)
	opts := batch.Options{
		Labels:  radiometry.DefaultLabels(cfg.Spots),
		Order:   byteOrder,
		Workers: cfg.Workers,
		// Spread the remaining CPUs over the rows of each frame.
		Split: max(1, runtime.GOMAXPROCS(0)/cfg.Workers),
	}

	var r exiftool.Reader
	var paths []string
	if *fake != 0 {
		r, paths = fakeReader(*fake)
	} else {
		t, err := exiftool.New(cfg.Exiftool)
		if err != nil {
			return err
		}
		log.Printf("using %s", t)
		r = t
		if paths, err = batch.Find(dir); err != nil {
			return err
		}
	}
	fmt.Printf("Found %d .jpg files\n", len(paths))

	w, err := report.Open(cfg.Output, opts.Labels)
	if err != nil {
		return err
	}
	defer w.Close()

	var server *WebServer
	if *port != 0 {
		server = StartWebServer(*port)
	}
	done := func(row report.Row, img *batch.Image) {
		if server != nil {
			server.Add(row, img)
		}
	}

	rows, err := batch.Run(ctx, r, paths, opts, done)
	if err2 := add(w, rows); err2 != nil {
		return err2
	}
	if err != nil {
		return err
	}
	if err := report.Print(os.Stdout, opts.Labels, rows); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), cfg.Output)
	if *chart != "" {
		if err := report.Plot(*chart, opts.Labels, rows); err != nil {
			return err
		}
	}

	if !*watch || dir == "" {
		if server != nil {
			// Keep serving the results until Ctrl-C.
			<-ctx.Done()
		}
		return nil
	}
	fmt.Printf("Watching %s\n", dir)
	err = watchDir(ctx, dir, time.Second, func(path string) {
		row, img := batch.Row(ctx, r, path, opts)
		done(row, img)
		if err := add(w, []report.Row{row}); err != nil {
			log.Printf("%s: %s", cfg.Output, err)
			return
		}
		fmt.Printf("%s\t%s\n", filepath.Base(path), row.Result.Mean)
	})
	fmt.Print("\n")
	return err
}

// add writes the rows and flushes them to disk.
func add(w report.Writer, rows []report.Row) error {
	for _, row := range rows {
		if err := w.Add(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nthermospot: %s.\n", err)
		os.Exit(1)
	}
}
