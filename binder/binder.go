/*
 * binder.go, part of gomm.
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

package binder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/dcd"
	"github.com/rmera/gomm/engine"
	"github.com/rmera/gomm/internal/logging"
)

//MissingOutputError is returned when a step succeeded but some of the
//files it should have produced are not there.
type MissingOutputError struct {
	Kind  Kind
	Dir   string
	Files []string
}

func (err *MissingOutputError) Error() string {
	return fmt.Sprintf("missing %s output in %s: %s", err.Kind, err.Dir, strings.Join(err.Files, ", "))
}

//PreparedStructure is the name of the structure a receptor preparation of input produces.
func PreparedStructure(input string) string { return mm.BaseName(input) + "_prepared.pdb" }

//SystemStructure is the name of the structure a system preparation of input produces.
func SystemStructure(input string) string { return mm.BaseName(input) + "_system.pdb" }

//SimulationOutputs returns the names of the files the simulation S produces.
//minlog is empty if S doesn't minimize.
func SimulationOutputs(S *mm.Simulation) (structure, trajectory, log, minlog string) {
	base := mm.BaseName(S.Input)
	if S.Minimization.Enabled {
		minlog = engine.MinLog
	}
	return base + ".pdb", base + ".dcd", engine.MDLog, minlog
}

//Binder turns the outputs of finished runs into Results.
type Binder struct {
	Recorder Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

//New returns a binder that records provenance with rec (nothing, if nil)
//and logs to L.
func New(rec Recorder, L *slog.Logger) *Binder {
	if rec == nil {
		rec = NopRecorder{}
	}
	if L == nil {
		L = logging.Discard()
	}
	return &Binder{Recorder: rec, Logger: L, Now: time.Now}
}

func (B *Binder) newResult(kind Kind, dir, source string) (*Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: kind, Dir: abs, Source: source}, nil
}

//BindStructure binds the output of the receptor preparation R, run in dir.
func (B *Binder) BindStructure(ctx context.Context, dir string, R *mm.Receptor) (*Result, error) {
	res, err := B.newResult(KindStructure, dir, R.Input)
	if err != nil {
		return nil, err
	}
	res.Structure = PreparedStructure(R.Input)
	return B.bind(ctx, res, nil)
}

//BindSystem binds the output of the system preparation S, run in dir.
func (B *Binder) BindSystem(ctx context.Context, dir string, S *mm.System) (*Result, error) {
	res, err := B.newResult(KindSystem, dir, S.Input)
	if err != nil {
		return nil, err
	}
	res.Structure = SystemStructure(S.Input)
	res.MainFF, res.WaterFF = S.ForceField.Files()
	res.NBMethod = S.Nonbonded.Method.String()
	res.NBCutoff = S.Nonbonded.Cutoff
	return B.bind(ctx, res, nil)
}

//BindSimulation binds the output of the simulation S, run in dir. The
//expected number of frames is compared with the trajectory, but a mismatch
//is only logged, as the trajectory header isn't always reliable.
func (B *Binder) BindSimulation(ctx context.Context, dir string, S *mm.Simulation) (*Result, error) {
	res, err := B.newResult(KindSimulation, dir, S.Input)
	if err != nil {
		return nil, err
	}
	res.Structure, res.Trajectory, res.Log, res.MinLog = SimulationOutputs(S)
	res.MainFF, res.WaterFF = S.MainFF, S.WaterFF
	res.NBMethod = S.Nonbonded.Method.String()
	res.NBCutoff = S.Nonbonded.Cutoff
	res.SetTrajectory(S)
	return B.bind(ctx, res, B.checkTrajectory)
}

func (B *Binder) checkTrajectory(res *Result) {
	name := res.Path(res.Trajectory)
	n, H, err := dcd.CountFrames(name)
	if err != nil {
		B.Logger.Warn("unable to check the trajectory", "file", name, "error", err)
		if H == nil {
			return
		}
	}
	want := res.Traj.Frames
	if n != want || H.Frames != want {
		B.Logger.Warn("trajectory frame count mismatch", "file", name, "expected", want, "header", H.Frames, "stored", n)
		return
	}
	B.Logger.Debug("trajectory checked", "file", name, "frames", n, "atoms", H.NAtoms)
}

func (B *Binder) bind(ctx context.Context, res *Result, check func(*Result)) (*Result, error) {
	var missing []string
	for _, f := range []string{res.Structure, res.Trajectory, res.Log, res.MinLog} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(res.Path(f)); err != nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingOutputError{Kind: res.Kind, Dir: res.Dir, Files: missing}
	}
	if check != nil {
		check(res)
	}
	res.ID = uuid.New()
	res.Created = B.Now().UTC()
	E, err := NewEdge(res, res.Created)
	if err != nil {
		return nil, err
	}
	if err := B.Recorder.Record(ctx, E); err != nil {
		return nil, fmt.Errorf("recording provenance of %s: %w", res.ID, err)
	}
	if err := res.Write(); err != nil {
		return nil, fmt.Errorf("writing result %s: %w", res.ID, err)
	}
	B.Logger.Info("output bound", "kind", res.Kind, "id", res.ID, "structure", res.Path(res.Structure))
	return res, nil
}
