/*
 * result.go, part of gomm.
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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	mm "github.com/rmera/gomm"
)

//ResultFile is the name of the file, in the run directory, where the result is written.
const ResultFile = "result.json"

//Kind is what a result holds.
type Kind string

const (
	KindStructure  Kind = "structure"
	KindSystem     Kind = "system"
	KindSimulation Kind = "simulation"
)

//Trajectory is the information about the trajectory of a simulation result.
type Trajectory struct {
	Integrator string  `json:"integrator"`
	Steps      int     `json:"steps"`
	Interval   int     `json:"interval"`
	StepSize   float64 `json:"step_size_ps"`
	Frames     int     `json:"frames"`
	Time       float64 `json:"time_ps"`
	Variable   bool    `json:"variable_step,omitempty"` //Time is nominal
}

//Result is the handle to the outputs of a successful protocol run.
//Files are referenced by path, never copied.
type Result struct {
	ID         uuid.UUID   `json:"id"`
	Kind       Kind        `json:"kind"`
	Source     string      `json:"source"`
	Created    time.Time   `json:"created"`
	Dir        string      `json:"dir"`
	Structure  string      `json:"structure"`
	Trajectory string      `json:"trajectory,omitempty"`
	Log        string      `json:"log,omitempty"`
	MinLog     string      `json:"min_log,omitempty"`
	MainFF     string      `json:"main_ff,omitempty"`
	WaterFF    string      `json:"water_ff,omitempty"`
	NBMethod   string      `json:"nb_method,omitempty"`
	NBCutoff   float64     `json:"nb_cutoff,omitempty"`
	Traj       *Trajectory `json:"trajectory_info,omitempty"`
}

//Frames returns the number of frames a run of steps steps saving every interval
//steps produces.
func Frames(steps, interval int) int {
	if interval <= 0 {
		return 0
	}
	return steps / interval
}

//ElapsedTime returns the simulated time, in ps, covered by the given number of frames.
//For variable-step integrators the value is nominal, computed with the configured step size.
func ElapsedTime(frames int, S *mm.Simulation) float64 {
	return float64(frames) * S.StepSize
}

//SetTrajectory appends the trajectory metadata of the simulation S to R.
func (R *Result) SetTrajectory(S *mm.Simulation) {
	frames := Frames(S.Steps, S.TrajInterval)
	T := &Trajectory{
		Integrator: S.Integrator.String(),
		Steps:      S.Steps,
		Interval:   S.TrajInterval,
		Frames:     frames,
		StepSize:   S.StepSize,
		Time:       ElapsedTime(frames, S),
		Variable:   S.Integrator.Variable(),
	}
	R.Traj = T
}

//Write writes R as JSON to the file ResultFile in its directory.
func (R *Result) Write() error {
	b, err := json.MarshalIndent(R, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", R.ID, err)
	}
	return os.WriteFile(filepath.Join(R.Dir, ResultFile), append(b, '\n'), 0644)
}

//ReadResult reads the result written in the run directory dir.
func ReadResult(dir string) (*Result, error) {
	b, err := os.ReadFile(filepath.Join(dir, ResultFile))
	if err != nil {
		return nil, err
	}
	R := new(Result)
	if err := json.Unmarshal(b, R); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Join(dir, ResultFile), err)
	}
	return R, nil
}

//Path returns the full path of the file name in the result's directory.
func (R *Result) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(R.Dir, name)
}
