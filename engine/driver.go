/*
 * driver.go, part of gomm.
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
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/rmera/gomm/paramfile"
)

//The driver programs are rendered with every value as a literal,
//so the engine never evaluates anything taken from the parameter file.

var driverFuncs = template.FuncMap{
	"py":     strconv.Quote,
	"pyf":    paramfile.FormatFloat,
	"pybool": paramfile.FormatBool,
	"args": func(A []Arg) string {
		s := make([]string, len(A))
		for i, v := range A {
			s[i] = v.Python()
		}
		return strings.Join(s, ", ")
	},
}

const driverHeader = `# Written by mmengine from {{py .ParamFile}}.
import sys
from openmm.app import *
from openmm import *
from openmm.unit import *
`

const prepareDriver = driverHeader + `
pdb = PDBFile({{py .Input}})
forcefield = ForceField({{py .MainFF}}, {{py .WaterFF}})
modeller = Modeller(pdb.topology, pdb.positions)
{{- if .AddHydrogens}}
modeller.addHydrogens(forcefield, pH={{pyf .PH}})
{{- end}}
modeller.addSolvent(forcefield, model={{py .WaterModel}},
{{- if .BoxSize}}
    boxSize=Vec3({{pyf (index .BoxSize 0)}}, {{pyf (index .BoxSize 1)}}, {{pyf (index .BoxSize 2)}})*nanometers,
{{- else}}
    padding={{pyf .Padding}}*nanometers,
{{- end}}
    ionicStrength={{pyf .SaltConc}}*molar, neutralize={{pybool .Neutralize}},
    positiveIon={{py .Cation.String}}, negativeIon={{py .Anion.String}})
with open({{py .Output}}, 'w') as f:
    PDBFile.writeFile(modeller.topology, modeller.positions, f)
`

const simulateDriver = driverHeader + `
pdb = PDBFile({{py .Input}})
forcefield = ForceField({{py .MainFF}}, {{py .WaterFF}})
system = forcefield.createSystem(pdb.topology, nonbondedMethod={{.Nonbonded.Method}},
    nonbondedCutoff={{pyf .Nonbonded.Cutoff}}*nanometer, constraints={{.Constraints}})
{{- if .Barostat}}
system.addForce(MonteCarloBarostat({{pyf .Pressure}}*bar, {{pyf .Temperature}}*kelvin, {{.BarFreq}}))
{{- end}}
integrator = {{.Integrator}}Integrator({{args .Args}})
properties = {}
{{- if .GPUs}}
properties['DeviceIndex'] = {{py .GPUs}}
{{- end}}
simulation = Simulation(pdb.topology, system, integrator, platformProperties=properties)
simulation.context.setPositions(pdb.positions)
{{- if .Minimize}}
print('Running {{.MaxIter}} minimization steps or until <= {{pyf .MinimTol}} kJ/mol/nm')
sys.stdout.flush()
simulation.reporters.append(StateDataReporter(sys.stdout, {{.TrajInterval}}, step=True,
    potentialEnergy=True, temperature=True, volume=True))
simulation.reporters.append(StateDataReporter({{py .MinLog}}, {{.TrajInterval}}, step=True,
    potentialEnergy=True, temperature=True, volume=True))
simulation.minimizeEnergy(tolerance={{pyf .MinimTol}}*kilojoules_per_mole/nanometer, maxIterations={{.MaxIter}})
{{- end}}
simulation.reporters.append(DCDReporter({{py .Trajectory}}, {{.TrajInterval}}))
simulation.reporters.append(StateDataReporter({{py .Log}}, {{.TrajInterval}}, step=True,
    potentialEnergy=True, temperature=True, volume=True))
print('Running {{.Steps}} steps simulation')
sys.stdout.flush()
simulation.step({{.Steps}})
positions = simulation.context.getState(getPositions=True).getPositions()
with open({{py .Structure}}, 'w') as f:
    PDBFile.writeFile(simulation.topology, positions, f)
`

var (
	prepareTmpl  = template.Must(template.New("prepare").Funcs(driverFuncs).Parse(prepareDriver))
	simulateTmpl = template.Must(template.New("simulate").Funcs(driverFuncs).Parse(simulateDriver))
)

type prepareData struct {
	*PrepareRequest
	ParamFile string
}

type simulateData struct {
	*SimulateRequest
	ParamFile  string
	Args       []Arg
	Structure  string
	Trajectory string
	Log        string
	MinLog     string
}

//RenderPrepare writes to w the driver program for a system preparation.
func RenderPrepare(w io.Writer, P *PrepareRequest, paramFile string) error {
	return prepareTmpl.Execute(w, prepareData{P, paramFile})
}

//RenderSimulate writes to w the driver program for a simulation.
func RenderSimulate(w io.Writer, S *SimulateRequest, paramFile string) error {
	args, err := IntegratorArgs(S)
	if err != nil {
		return err
	}
	d := simulateData{SimulateRequest: S, ParamFile: paramFile, Args: args}
	d.Structure, d.Trajectory, d.Log, d.MinLog = S.Outputs()
	return simulateTmpl.Execute(w, d)
}

//Render decodes F and writes to w the driver program for whatever job
//F asks for. It returns the kind of job and the base name for the outputs.
func Render(w io.Writer, F *paramfile.File) (Kind, string, error) {
	kind, err := Inspect(F)
	if err != nil {
		return kind, "", err
	}
	if kind == Prepare {
		P, err := DecodePrepare(F)
		if err != nil {
			return kind, "", err
		}
		return kind, P.Base(), RenderPrepare(w, P, F.Name())
	}
	S, err := DecodeSimulate(F)
	if err != nil {
		return kind, "", err
	}
	if err := RenderSimulate(w, S, F.Name()); err != nil {
		return kind, "", fmt.Errorf("rendering simulation driver: %w", err)
	}
	return kind, S.Base(), nil
}
