/*
 * exec.go, part of gomm.
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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/rmera/gomm/internal/logging"
)

//Commands are the external programs steps can run.
type Commands struct {
	Engine string //the engine invocation program (mmengine)
	Fixer  string //the structure repair program (pdbfixer)
}

//DefaultCommands expects both programs to be in the PATH.
func DefaultCommands() Commands {
	return Commands{Engine: "mmengine", Fixer: "pdbfixer"}
}

//ExecContext is what steps get to do their work: a private directory,
//the environment for the programs they spawn, a way to spawn them, and a logger.
//Env holds KEY=VALUE pairs that are added to the environment of each
//spawned command. The process' own environment is never changed.
type ExecContext struct {
	Dir      string
	Env      []string
	Runner   Runner
	Commands Commands
	Logger   *slog.Logger
}

//NewExecContext returns a context for the directory dir, with the default
//commands, a real runner and logger L (none, if nil).
func NewExecContext(dir string, L *slog.Logger) *ExecContext {
	return &ExecContext{Dir: dir, Runner: ExecRunner{}, Commands: DefaultCommands(), Logger: L}
}

//Log returns the logger of the context, one that discards everything if none was set.
func (ec *ExecContext) Log() *slog.Logger {
	if ec.Logger == nil {
		return logging.Discard()
	}
	return ec.Logger
}

//Command returns a command for program with args, to be run in the
//context's directory with the context's environment.
func (ec *ExecContext) Command(program string, args ...string) Command {
	return Command{Path: program, Args: args, Dir: ec.Dir, Env: ec.Env}
}

//Run runs C with the context's runner, logging it.
func (ec *ExecContext) Run(ctx context.Context, C Command) error {
	ec.Log().Info("running command", "command", C.String(), "dir", C.Dir)
	if ec.Runner == nil {
		return fmt.Errorf("no runner in the execution context")
	}
	return ec.Runner.Run(ctx, C)
}

//Command is an external program invocation.
type Command struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string //added to the parent's environment
	Stdout io.Writer
	Stderr io.Writer
}

func (C Command) String() string {
	return strings.Join(append([]string{C.Path}, C.Args...), " ")
}

//Runner spawns commands and waits for them.
type Runner interface {
	Run(ctx context.Context, C Command) error
}

//ExecRunner runs commands as child processes. Cancelling the context
//kills the child.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, C Command) error {
	cmd := exec.CommandContext(ctx, C.Path, C.Args...)
	cmd.Dir = C.Dir
	cmd.Env = append(os.Environ(), C.Env...)
	cmd.Stdout = C.Stdout
	cmd.Stderr = C.Stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	cerr := &CommandError{Command: C.String(), ExitCode: -1, Err: err}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		cerr.ExitCode = exit.ExitCode()
	}
	if ctx.Err() != nil {
		cerr.Err = fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return cerr
}

//CommandError is a command that could not be started, or that exited with
//a nonzero code. ExitCode is -1 if the command didn't exit normally.
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (err *CommandError) Error() string {
	if err.ExitCode >= 0 {
		return fmt.Sprintf("command %q exited with code %d", err.Command, err.ExitCode)
	}
	return fmt.Sprintf("command %q failed: %v", err.Command, err.Err)
}

func (err *CommandError) Unwrap() error { return err.Err }

//StepError is the failure of one step of a pipeline.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (err *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", err.Index, err.Step, err.Err)
}

func (err *StepError) Unwrap() error { return err.Err }
