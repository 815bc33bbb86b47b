/*
 * request.go, part of gomm.
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
	"errors"
	"fmt"
	"strings"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/paramfile"
)

//Kind is the kind of job a parameter file asks for.
type Kind int

const (
	Prepare Kind = iota
	Simulate
)

func (K Kind) String() string {
	if K == Prepare {
		return "prepare"
	}
	return "simulate"
}

//ErrUnknownKind is returned for parameter files that are neither
//for system preparation nor for simulation.
var ErrUnknownKind = errors.New("parameter file has neither wModel nor integrator")

//Inspect tells what kind of job the parameter file is for. Files with
//a water model are for system preparation, files with an integrator, for simulation.
func Inspect(F *paramfile.File) (Kind, error) {
	switch {
	case F.Has("wModel"):
		return Prepare, nil
	case F.Has("integrator"):
		return Simulate, nil
	}
	return 0, ErrUnknownKind
}

//decoder reads typed values from a parameter file, keeping only the
//first error, in the manner of bufio.Scanner.
type decoder struct {
	F   *paramfile.File
	err error
}

func (d *decoder) str(key string) string {
	if d.err != nil {
		return ""
	}
	s, err := d.F.Get(key)
	d.err = err
	return s
}

func (d *decoder) float(key string) float64 {
	if d.err != nil {
		return 0
	}
	f, err := d.F.Float(key)
	d.err = err
	return f
}

func (d *decoder) int(key string) int {
	if d.err != nil {
		return 0
	}
	i, err := d.F.Int(key)
	d.err = err
	return i
}

func (d *decoder) bool(key string) bool {
	if d.err != nil {
		return false
	}
	b, err := d.F.Bool(key)
	d.err = err
	return b
}

func (d *decoder) floats(key string) []float64 {
	if d.err != nil {
		return nil
	}
	f, err := d.F.Floats(key)
	d.err = err
	return f
}

//enum parses the value of key with parse.
func enum[T any](d *decoder, key string, parse func(string) (T, error)) T {
	var zero T
	s := d.str(key)
	if d.err != nil {
		return zero
	}
	v, err := parse(s)
	if err != nil {
		d.err = fmt.Errorf("%w: %w", &paramfile.Error{File: d.F.Name(), Key: key, Err: paramfile.ErrBadValue}, err)
		return zero
	}
	return v
}

//PrepareRequest holds the typed values of a system preparation parameter file.
type PrepareRequest struct {
	Input        string
	MainFF       string
	WaterFF      string
	WaterModel   string
	AddHydrogens bool
	PH           float64
	BoxSize      []float64 //nil when the box is given by padding
	Padding      float64
	SaltConc     float64
	Neutralize   bool
	Cation       mm.Cation
	Anion        mm.Anion
}

//Base is the name from which the output file names are built.
func (P *PrepareRequest) Base() string { return mm.BaseName(P.Input) }

//Output is the name of the solvated structure the engine writes.
func (P *PrepareRequest) Output() string { return P.Base() + "_system.pdb" }

//DecodePrepare reads a system preparation request from F. Missing or
//malformed values are errors naming the key.
func DecodePrepare(F *paramfile.File) (*PrepareRequest, error) {
	d := &decoder{F: F}
	P := &PrepareRequest{
		Input:        d.str("inputFile"),
		MainFF:       d.str("mFF"),
		WaterFF:      d.str("wFF"),
		WaterModel:   d.str("wModel"),
		AddHydrogens: d.bool("addH"),
	}
	if P.AddHydrogens {
		P.PH = d.float("hPH")
	}
	if F.Has("boxSize") {
		P.BoxSize = d.floats("boxSize")
		if d.err == nil && len(P.BoxSize) != 3 {
			d.err = &paramfile.Error{File: F.Name(), Key: "boxSize", Err: paramfile.ErrBadValue}
		}
	} else {
		P.Padding = d.float("padDist")
	}
	P.SaltConc = d.float("saltConc")
	P.Neutralize = d.bool("neutralize")
	P.Cation = enum(d, "cationType", mm.ParseCation)
	P.Anion = enum(d, "anionType", mm.ParseAnion)
	if d.err != nil {
		return nil, d.err
	}
	return P, nil
}

//SimulateRequest holds the typed values of a simulation parameter file.
//Values the integrator doesn't use are left at zero.
type SimulateRequest struct {
	Input          string
	MainFF         string
	WaterFF        string
	Steps          int
	Constraints    mm.Constraints
	Nonbonded      mm.Nonbonded
	Integrator     mm.Integrator
	Temperature    float64
	StepSize       float64
	Friction       float64
	ErrorTolerance float64
	Minimize       bool
	MinimTol       float64
	MaxIter        int
	Barostat       bool
	Pressure       float64
	BarFreq        int
	TrajInterval   int
	GPUs           string
}

//DefaultBarostatFrequency is used when a file enables the barostat but
//doesn't give a frequency.
const DefaultBarostatFrequency = 25

//Base is the name from which the output file names are built.
func (S *SimulateRequest) Base() string { return mm.BaseName(S.Input) }

//Outputs returns the names of the files the engine writes for the simulation.
//The minimization log is empty if there is no minimization.
func (S *SimulateRequest) Outputs() (structure, trajectory, log, minlog string) {
	base := S.Base()
	if S.Minimize {
		minlog = MinLog
	}
	return base + ".pdb", base + ".dcd", MDLog, minlog
}

//Names of the logs written by the engine.
const (
	MDLog  = "md_log.txt"
	MinLog = "min_log.txt"
)

//DecodeSimulate reads a simulation request from F. Missing or
//malformed values are errors naming the key.
func DecodeSimulate(F *paramfile.File) (*SimulateRequest, error) {
	d := &decoder{F: F}
	S := &SimulateRequest{
		Input:   d.str("inputFile"),
		MainFF:  d.str("mFF"),
		WaterFF: d.str("wFF"),
		Steps:   d.int("nSteps"),
	}
	S.Constraints = enum(d, "constraints", mm.ParseConstraints)
	S.Nonbonded.Method = enum(d, "nbMethod", mm.ParseNonbondedMethod)
	S.Nonbonded.Cutoff = d.float("nbCutoff")
	S.Integrator = enum(d, "integrator", mm.ParseIntegrator)
	S.Minimize = d.bool("addMinimization")
	S.Barostat = d.bool("addBarostat")
	S.TrajInterval = d.int("nTraj")
	if d.err != nil {
		return nil, d.err
	}
	I := S.Integrator
	if I.UsesTemperature() || S.Barostat {
		S.Temperature = d.float("temperature")
	}
	if I.UsesStepSize() {
		S.StepSize = d.float("stepSize")
	}
	if I.UsesFriction() {
		S.Friction = d.float("fricCoef")
	}
	if I.UsesErrorTolerance() {
		S.ErrorTolerance = d.float("errTol")
	}
	if S.Minimize {
		S.MinimTol = d.float("minimTol")
		S.MaxIter = d.int("maxIter")
	}
	if S.Barostat {
		S.Pressure = d.float("pressure")
		S.BarFreq = DefaultBarostatFrequency
		if F.Has("barFreq") {
			S.BarFreq = d.int("barFreq")
		}
	}
	if F.Has("gpus") {
		S.GPUs = strings.TrimSpace(d.str("gpus"))
	}
	if d.err != nil {
		return nil, d.err
	}
	return S, nil
}
