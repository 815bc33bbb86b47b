/*
 * handle.go, part of gomm.
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

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rmera/gomm/internal/logging"
	"github.com/rmera/gomm/paramfile"
)

//PythonEnv is the environment variable that names the interpreter used to run
//the engine, when no command is set explicitly.
const PythonEnv = "GOMM_PYTHON"

//Error is returned when the engine can't be set up or fails. It wraps
//the underlying error.
type Error struct {
	Program string
	Input   string //the parameter file, or the driver program
	Err     error
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s with %s: %v", err.Program, err.Input, err.Err)
}

func (err *Error) Unwrap() error { return err.Err }

//OpenMMHandle runs one engine job in a directory: it turns a
//parameter file into a driver program and runs the interpreter on it.
type OpenMMHandle struct {
	command string
	dir     string
	name    string //base name for the driver and its log
	kind    Kind
	driver  string
	logger  *slog.Logger
}

//NewOpenMMHandle returns a handle with the default settings.
func NewOpenMMHandle() *OpenMMHandle {
	O := new(OpenMMHandle)
	O.SetDefaults()
	return O
}

//SetDefaults sets the interpreter from the PythonEnv variable, or "python",
//the working directory to the current one, and a logger that discards everything.
func (O *OpenMMHandle) SetDefaults() {
	O.command = os.Getenv(PythonEnv)
	if O.command == "" {
		O.command = "python"
	}
	O.dir = "."
	O.logger = logging.Discard()
}

//SetCommand sets the interpreter that runs the driver.
func (O *OpenMMHandle) SetCommand(name string) { O.command = name }

//Command returns the interpreter that runs the driver.
func (O *OpenMMHandle) Command() string { return O.command }

//SetDir sets the directory where the driver is written and run.
func (O *OpenMMHandle) SetDir(dir string) { O.dir = dir }

//SetName sets the base name of the driver and log files. By default it is
//the base name of the input structure.
func (O *OpenMMHandle) SetName(name string) { O.name = name }

func (O *OpenMMHandle) SetLogger(L *slog.Logger) { O.logger = L }

//Kind returns the kind of the job prepared by the last BuildInput call.
func (O *OpenMMHandle) Kind() Kind { return O.kind }

//Driver returns the path of the driver written by the last BuildInput call.
func (O *OpenMMHandle) Driver() string { return O.driver }

//Log returns the path of the file where Run writes the interpreter's output.
func (O *OpenMMHandle) Log() string {
	return filepath.Join(O.dir, O.name+"_engine.log")
}

//BuildInput writes the driver program for the job in F to
//<name>_driver.py in the handle's directory.
func (O *OpenMMHandle) BuildInput(F *paramfile.File) error {
	var buf bytes.Buffer
	kind, base, err := Render(&buf, F)
	if err != nil {
		return &Error{Program: "mmengine", Input: F.Name(), Err: err}
	}
	O.kind = kind
	if O.name == "" {
		O.name = base
	}
	O.driver = filepath.Join(O.dir, O.name+"_driver.py")
	if err := os.WriteFile(O.driver, buf.Bytes(), 0644); err != nil {
		return &Error{Program: "mmengine", Input: F.Name(), Err: err}
	}
	O.logger.Info("driver written", "kind", kind, "driver", O.driver)
	return nil
}

//Run runs the interpreter on the driver and waits for it to finish. The
//interpreter's output goes to the log file and to echo, if not nil. Cancelling
//ctx kills the interpreter.
func (O *OpenMMHandle) Run(ctx context.Context, echo io.Writer) error {
	if O.driver == "" {
		return &Error{Program: O.command, Input: O.name, Err: fmt.Errorf("no driver, BuildInput must be called first")}
	}
	logfile, err := os.Create(O.Log())
	if err != nil {
		return &Error{Program: O.command, Input: O.driver, Err: err}
	}
	defer logfile.Close()
	var out io.Writer = logfile
	if echo != nil {
		out = io.MultiWriter(logfile, echo)
	}
	cmd := exec.CommandContext(ctx, O.command, filepath.Base(O.driver))
	cmd.Dir = O.dir
	cmd.Stdout = out
	cmd.Stderr = out
	O.logger.Info("running engine", "command", O.command, "driver", O.driver, "dir", O.dir)
	if err := cmd.Run(); err != nil {
		return &Error{Program: O.command, Input: O.driver, Err: err}
	}
	return nil
}
