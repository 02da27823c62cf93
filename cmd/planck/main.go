// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// planck converts between raw sensor counts and temperatures for a set of
// calibration constants.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/maruel/thermospot/planck"
	"github.com/maruel/thermospot/radiometry"
)

func mainImpl() error {
	p := planck.Default
	flag.Float64Var(&p.R1, "r1", p.R1, "PlanckR1")
	flag.Float64Var(&p.B, "b", p.B, "PlanckB")
	flag.Float64Var(&p.F, "f", p.F, "PlanckF")
	flag.Float64Var(&p.O, "o", p.O, "PlanckO")
	flag.Float64Var(&p.R2, "r2", p.R2, "PlanckR2")
	celsius := flag.Bool("c", false, "arguments are temperatures in °C instead of counts")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: planck [flags] <value>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("expected at least one value")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return convert(os.Stdout, p, *celsius, flag.Args())
}

// convert prints one line per value: the input and its conversion.
func convert(w io.Writer, p planck.Params, celsius bool, args []string) error {
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return err
		}
		if celsius {
			if math.IsNaN(v) || v <= -radiometry.ZeroCelsius || v > 1e6 {
				fmt.Fprintf(w, "%g\tinvalid\n", v)
				continue
			}
			fmt.Fprintf(w, "%s\t%g\n", radiometry.Celsius(v), p.Count(v+radiometry.ZeroCelsius))
			continue
		}
		k := p.Kelvin(v)
		if math.IsNaN(k) || k <= 0 {
			fmt.Fprintf(w, "%g\tinvalid\n", v)
			continue
		}
		fmt.Fprintf(w, "%g\t%s\n", v, radiometry.Celsius(k-radiometry.ZeroCelsius))
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nplanck: %s.\n", err)
		os.Exit(1)
	}
}
