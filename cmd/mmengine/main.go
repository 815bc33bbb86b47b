/*
 * main.go, part of gomm.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usach(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

//mmengine runs one OpenMM job described by a gomm parameter file.
//
//	mmengine [flags] <params-file>
//
//It must be run in the job's working directory. It exits with 1 on any error.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rmera/gomm/engine"
	"github.com/rmera/gomm/internal/logging"
	"github.com/rmera/gomm/paramfile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mmengine:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mmengine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	python := fs.String("python", "", "Interpreter that runs the engine driver. By default, $"+engine.PythonEnv+" or python")
	renderOnly := fs.Bool("render-only", false, "Write the driver program but don't run it")
	logLevel := fs.String("log-level", "info", "Logging level: debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  mmengine [flags] <params-file>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one parameter file, got %d arguments", fs.NArg())
	}
	logger := logging.New(*logLevel, *logFormat, stderr)

	F, err := paramfile.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	O := engine.NewOpenMMHandle()
	O.SetLogger(logger)
	if *python != "" {
		O.SetCommand(*python)
	}
	if err := O.BuildInput(F); err != nil {
		return err
	}
	if *renderOnly {
		return nil
	}
	return O.Run(ctx, stderr)
}
