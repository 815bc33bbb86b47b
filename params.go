/*
 * params.go, part of gomm.
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

package mm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmera/gomm/paramfile"
)

//Names of the parameter files written for the engine.
const (
	SimulationParamsFile = "simulationParams.txt"
	SolvationParamsFile  = "solvationParams.txt"
)

//option is one line of a parameter file: it is written only if when
//returns true (or is nil).
type option struct {
	key   string
	when  func() bool
	value func() string
}

func always() bool { return true }

func writeOptions(name string, opts []option) (*paramfile.File, error) {
	F := paramfile.New(name)
	for _, o := range opts {
		if o.when != nil && !o.when() {
			continue
		}
		if err := F.Add(o.key, o.value()); err != nil {
			return nil, err
		}
	}
	return F, nil
}

func ffloat(v float64) func() string { return func() string { return paramfile.FormatFloat(v) } }
func fint(v int) func() string       { return func() string { return strconv.Itoa(v) } }
func fbool(v bool) func() string     { return func() string { return paramfile.FormatBool(v) } }
func fstr(v string) func() string    { return func() string { return v } }

func fstringer(v fmt.Stringer) func() string { return func() string { return v.String() } }

//simulationOptions returns the options of a simulation parameter file, in the
//order they are written.
func (S *Simulation) simulationOptions() []option {
	I := S.Integrator
	return []option{
		{"inputFile", always, fstr(S.Input)},
		{"mFF", always, fstr(S.MainFF)},
		{"wFF", always, fstr(S.WaterFF)},
		{"nSteps", always, fint(S.Steps)},
		{"constraints", always, fstringer(S.Constraints)},
		{"nbMethod", always, fstringer(S.Nonbonded.Method)},
		{"nbCutoff", always, ffloat(S.Nonbonded.Cutoff)},
		{"integrator", always, fstringer(I)},
		{"temperature", func() bool { return I.UsesTemperature() || S.Barostat.Enabled }, ffloat(S.Temperature)},
		{"stepSize", I.UsesStepSize, ffloat(S.StepSize)},
		{"fricCoef", I.UsesFriction, ffloat(S.FrictionValue())},
		{"errTol", I.UsesErrorTolerance, ffloat(S.ErrorTolerance)},
		{"addMinimization", always, fbool(S.Minimization.Enabled)},
		{"minimTol", func() bool { return S.Minimization.Enabled }, ffloat(S.Minimization.Tolerance)},
		{"maxIter", func() bool { return S.Minimization.Enabled }, fint(S.Minimization.MaxIter)},
		{"addBarostat", always, fbool(S.Barostat.Enabled)},
		{"pressure", func() bool { return S.Barostat.Enabled }, ffloat(S.Barostat.Pressure)},
		{"barFreq", func() bool { return S.Barostat.Enabled }, fint(S.Barostat.Frequency)},
		{"nTraj", always, fint(S.TrajInterval)},
		{"gpus", func() bool { return len(S.GPUs) > 0 }, func() string { return joinInts(S.GPUs) }},
	}
}

//Params returns the parameter file the engine needs to run the simulation.
//Options that don't apply to the chosen integrator, minimization and
//barostat settings are left out.
func (S *Simulation) Params() (*paramfile.File, error) {
	return writeOptions(SimulationParamsFile, S.simulationOptions())
}

func (S *System) systemOptions() []option {
	mff, wff := S.ForceField.Files()
	return []option{
		{"inputFile", always, fstr(S.Input)},
		{"mFF", always, fstr(mff)},
		{"wFF", always, fstr(wff)},
		{"wModel", always, fstr(WaterModel(wff))},
		{"addH", always, fbool(S.AddHydrogens)},
		{"hPH", func() bool { return S.AddHydrogens }, ffloat(S.PH)},
		{"boxSize", func() bool { return S.Box.Kind == Absolute }, func() string { return joinFloats(S.Box.Size[:]) }},
		{"padDist", func() bool { return S.Box.Kind == Padding }, ffloat(S.Box.Padding)},
		{"saltConc", always, ffloat(S.SaltConc)},
		{"neutralize", always, fbool(S.Neutralize)},
		{"cationType", always, fstringer(S.Cation)},
		{"anionType", always, fstringer(S.Anion)},
	}
}

//Params returns the parameter file the engine needs to prepare
//(protonate, solvate and ionize) the system.
func (S *System) Params() (*paramfile.File, error) {
	return writeOptions(SolvationParamsFile, S.systemOptions())
}

func joinFloats(v []float64) string {
	s := make([]string, len(v))
	for i, f := range v {
		s[i] = paramfile.FormatFloat(f)
	}
	return strings.Join(s, ", ")
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ",")
}
