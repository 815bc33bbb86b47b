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

//gomm runs molecular dynamics preparation and simulation protocols
//with an OpenMM engine, and inspects their results.
//
//	gomm [flags] receptor|system|simulate <config.{yaml,yml,hcl}>
//	gomm view [-channel energy|temperature|volume] [-o out.png] <log>...
//	gomm archive <run-dir>
//	gomm config <config.{yaml,yml,hcl}>
//
//Each protocol run gets its own directory under -workdir, where the
//result, result.json, is written.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/binder"
	"github.com/rmera/gomm/chemplot"
	"github.com/rmera/gomm/internal/logging"
	"github.com/rmera/gomm/mdlog"
	"github.com/rmera/gomm/pipeline"
	"github.com/rmera/gomm/protocol"
)

//ExitError is an error with the exit code the program should return.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return
	}
	code := 1
	var eerr *ExitError
	if errors.As(err, &eerr) {
		code = eerr.Code
	}
	fmt.Fprintln(os.Stderr, "gomm:", err)
	os.Exit(code)
}

//envFlag collects repeated KEY=VALUE flags.
type envFlag []string

func (e *envFlag) String() string { return strings.Join(*e, ",") }

func (e *envFlag) Set(s string) error {
	if k, _, ok := strings.Cut(s, "="); !ok || k == "" {
		return fmt.Errorf("%q is not of the form KEY=VALUE", s)
	}
	*e = append(*e, s)
	return nil
}

type options struct {
	workdir    string
	engine     string
	fixer      string
	env        envFlag
	provenance string
	from       string
	logger     *slog.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gomm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, `Usage:
  gomm [flags] receptor|system|simulate <config.{yaml,yml,hcl}>
  gomm view [-channel energy|temperature|volume] [-o out.png] <log>...
  gomm archive <run-dir>
  gomm config <config.{yaml,yml,hcl}>

Flags:
`)
		fs.PrintDefaults()
	}
	var O options
	def := pipeline.DefaultCommands()
	fs.StringVar(&O.workdir, "workdir", ".", "Directory where the run directories are created")
	fs.StringVar(&O.engine, "engine", def.Engine, "Engine invocation program")
	fs.StringVar(&O.fixer, "pdbfixer", def.Fixer, "Structure repair program")
	fs.Var(&O.env, "env", "KEY=VALUE added to the environment of the programs run (repeatable)")
	fs.StringVar(&O.provenance, "provenance", "", "Where to record provenance: a .jsonl file or a postgres:// URL")
	fs.StringVar(&O.from, "from", "", "simulate: the run directory of a prepared system to simulate")
	logLevel := fs.String("log-level", "info", "Logging level: debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	O.logger = logging.New(*logLevel, *logFormat, stderr)
	if fs.NArg() == 0 {
		fs.Usage()
		return usageError("no command given")
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "receptor", "system", "simulate":
		if len(rest) != 1 {
			return usageError("%s needs exactly one configuration file", cmd)
		}
		return runProtocol(ctx, cmd, rest[0], &O, stdout)
	case "view":
		return view(rest, stdout, stderr)
	case "archive":
		if len(rest) != 1 {
			return usageError("archive needs exactly one run directory")
		}
		return archive(rest[0], stdout, O.logger)
	case "config":
		if len(rest) != 1 {
			return usageError("config needs exactly one configuration file")
		}
		return printConfig(rest[0], stdout)
	}
	fs.Usage()
	return usageError("unknown command %q", cmd)
}

func runProtocol(ctx context.Context, cmd, config string, O *options, stdout io.Writer) error {
	C, err := mm.LoadFile(config)
	if err != nil {
		return err
	}
	want := map[string]mm.Kind{"receptor": mm.KindReceptor, "system": mm.KindSystem, "simulate": mm.KindSimulation}[cmd]
	if C.Kind != want {
		return usageError("%s holds a %s configuration, not a %s one", config, C.Kind, want)
	}
	if O.from != "" {
		if C.Kind != mm.KindSimulation {
			return usageError("-from can only be used with simulate")
		}
		R, err := binder.ReadResult(O.from)
		if err != nil {
			return err
		}
		if C.Simulation, err = protocol.SimulationFromResult(R, C.Simulation); err != nil {
			return err
		}
	}
	rec, err := binder.OpenRecorder(ctx, O.provenance)
	if err != nil {
		return err
	}
	defer rec.Close()
	P, err := protocol.New(C, binder.New(rec, O.logger))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(O.workdir, 0755); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(O.workdir, fmt.Sprintf("%s_%s_", C.Kind, mm.BaseName(C.Input())))
	if err != nil {
		return err
	}
	ec := pipeline.NewExecContext(dir, O.logger)
	ec.Env = O.env
	ec.Commands = pipeline.Commands{Engine: O.engine, Fixer: O.fixer}
	P.Pipeline.Observe(func(from, to pipeline.State) {
		O.logger.Debug("pipeline state", "pipeline", P.Pipeline.Name(), "from", from.String(), "to", to.String())
	})
	R, err := P.Run(ctx, ec)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s %s\n", R.Kind, R.ID, R.Path(R.Structure))
	return nil
}

//printConfig writes the configuration in file as it will be used, defaults
//included, as YAML.
func printConfig(file string, stdout io.Writer) error {
	C, err := mm.LoadFile(file)
	if err != nil {
		return err
	}
	if err := C.Validate(); err != nil {
		return err
	}
	return C.WriteYAML(stdout)
}

func view(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	fs.SetOutput(stderr)
	channel := fs.String("channel", "energy", "Channel to plot: energy, temperature or volume")
	out := fs.String("o", "", "Image to write the plot to (no plot if empty)")
	title := fs.String("title", "", "Title of the plot (default: \"<system> trajectory <quantity>\")")
	if err := fs.Parse(args); err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	if fs.NArg() == 0 {
		return usageError("view needs at least one log file")
	}
	C, err := mdlog.ParseChannel(*channel)
	if err != nil {
		return usageError("%v", err)
	}
	var series []chemplot.Series
	for _, name := range fs.Args() {
		T, err := mdlog.ReadFile(name)
		if err != nil {
			return err
		}
		S, err := mdlog.Summary(T, C)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\n", name, S)
		series = append(series, chemplot.Series{Name: filepath.Base(name), Table: T})
	}
	if *out == "" {
		return nil
	}
	if len(series) == 1 {
		series[0].Name = ""
	}
	if *title == "" {
		system := ""
		if fs.NArg() == 1 {
			system = systemName(fs.Arg(0))
		}
		*title = chemplot.Title(system, C)
	}
	return chemplot.ChannelPlots(series, C, *title, *out)
}

//systemName names the system whose engine log is name: the structure of the
//result in the same directory, or the log itself if there is no result.
func systemName(name string) string {
	if R, err := binder.ReadResult(filepath.Dir(name)); err == nil && R.Structure != "" {
		return mm.BaseName(R.Structure)
	}
	return mm.BaseName(strings.TrimSuffix(strings.TrimSuffix(name, ".zst"), ".gz"))
}

func archive(dir string, stdout io.Writer, L *slog.Logger) error {
	logs, err := mdlog.Logs(dir)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return fmt.Errorf("no engine logs in %s", dir)
	}
	for _, name := range logs {
		z, err := mdlog.Compress(name)
		if err != nil {
			return err
		}
		L.Info("log archived", "log", name, "archive", z)
		fmt.Fprintln(stdout, z)
	}
	return nil
}
