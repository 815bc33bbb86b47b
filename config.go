/*
 * config.go, part of gomm.
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
	"path/filepath"
	"strings"
)

//Kind is the kind of protocol a configuration is for.
type Kind int

const (
	KindReceptor Kind = iota
	KindSystem
	KindSimulation
)

var kindLabels = []string{"receptor", "system", "simulation"}

func (K Kind) String() string { return label(kindLabels, int(K), "Kind") }

func ParseKind(s string) (Kind, error) {
	i, err := parseLabel(kindLabels, s, "protocol kind")
	return Kind(i), err
}

//Nonbonded holds the treatment of the non bonded interactions.
//The cutoff is in nm.
type Nonbonded struct {
	Method NonbondedMethod `yaml:"method"`
	Cutoff float64         `yaml:"cutoff"`
}

//Box is the solvent box. For Absolute boxes Size holds the three edges,
//for Padding boxes, Padding holds the distance from the solute to the
//box edges. All in nm.
type Box struct {
	Kind    BoxKind    `yaml:"kind"`
	Size    [3]float64 `yaml:"size,flow"`
	Padding float64    `yaml:"padding"`
}

//CleanOptions are applied to the input structure before it is
//passed to the repair tool.
type CleanOptions struct {
	RemoveWaters bool     `yaml:"remove_waters"`
	RemoveHetero bool     `yaml:"remove_hetero"`
	Chains       []string `yaml:"chains,omitempty,flow"` //keep only these, all if empty
	FirstAltLoc  bool     `yaml:"first_altloc"`
}

//Receptor is the configuration for a receptor preparation run.
type Receptor struct {
	Input              string       `yaml:"input"`
	AddAtoms           AddAtoms     `yaml:"add_atoms"`
	AddResidues        bool         `yaml:"add_residues"`
	ReplaceNonstandard bool         `yaml:"replace_nonstandard"`
	Clean              CleanOptions `yaml:"clean"`
}

//DefaultReceptor returns the receptor configuration with all the default values.
func DefaultReceptor() *Receptor {
	return &Receptor{
		AddAtoms: AddAll,
		Clean:    CleanOptions{RemoveWaters: true, FirstAltLoc: true},
	}
}

//System is the configuration for a system preparation (solvation) run.
type System struct {
	Input        string     `yaml:"input"`
	ForceField   ForceField `yaml:"forcefield"`
	Nonbonded    Nonbonded  `yaml:"nonbonded"`
	AddHydrogens bool       `yaml:"add_hydrogens"`
	PH           float64    `yaml:"ph"`
	Box          Box        `yaml:"box"`
	SaltConc     float64    `yaml:"salt_concentration"` //M
	Neutralize   bool       `yaml:"neutralize"`
	Cation       Cation     `yaml:"cation"`
	Anion        Anion      `yaml:"anion"`
}

//DefaultSystem returns the system configuration with all the default values.
func DefaultSystem() *System {
	return &System{
		ForceField: DefaultForceField(),
		Nonbonded:  Nonbonded{Method: NoCutoff, Cutoff: 1.0},
		PH:         7.0,
		Box:        Box{Kind: Padding, Size: [3]float64{5, 5, 5}, Padding: 1.0},
		Neutralize: true,
		Cation:     NaIon,
		Anion:      ClIon,
	}
}

//Minimization controls the energy minimization run before the dynamics.
//Tolerance is in kJ/mol/nm. A MaxIter of 0 means no limit.
type Minimization struct {
	Enabled   bool    `yaml:"enabled"`
	Tolerance float64 `yaml:"tolerance"`
	MaxIter   int     `yaml:"max_iterations"`
}

//Barostat controls the Monte Carlo barostat. Pressure is in bar,
//Frequency in steps.
type Barostat struct {
	Enabled   bool    `yaml:"enabled"`
	Pressure  float64 `yaml:"pressure"`
	Frequency int     `yaml:"frequency"`
}

//Simulation is the configuration for an MD simulation run.
//The input is a prepared system, and the force field files
//are the ones that system was prepared with.
type Simulation struct {
	Input          string       `yaml:"input"`
	MainFF         string       `yaml:"forcefield"`
	WaterFF        string       `yaml:"water_forcefield"`
	Nonbonded      Nonbonded    `yaml:"nonbonded"`
	Steps          int          `yaml:"steps"`
	TrajInterval   int          `yaml:"trajectory_interval"`
	Constraints    Constraints  `yaml:"constraints"`
	Minimization   Minimization `yaml:"minimization"`
	Integrator     Integrator   `yaml:"integrator"`
	StepSize       float64      `yaml:"step_size"`           //ps
	Friction       float64      `yaml:"friction"`            //1/ps
	Temperature    float64      `yaml:"temperature"`         //K
	CollisionFreq  float64      `yaml:"collision_frequency"` //1/ps, NoseHoover only
	ErrorTolerance float64      `yaml:"error_tolerance"`
	Barostat       Barostat     `yaml:"barostat"`
	GPUs           []int        `yaml:"gpus,omitempty,flow"`
}

//DefaultSimulation returns the simulation configuration with all the default values.
func DefaultSimulation() *Simulation {
	mff, wff := DefaultForceField().Files()
	return &Simulation{
		MainFF:         mff,
		WaterFF:        wff,
		Nonbonded:      Nonbonded{Method: NoCutoff, Cutoff: 1.0},
		Steps:          10000,
		TrajInterval:   100,
		Constraints:    HBonds,
		Minimization:   Minimization{Enabled: true, Tolerance: 10, MaxIter: 10000},
		Integrator:     Langevin,
		StepSize:       0.004,
		Friction:       1,
		Temperature:    300,
		CollisionFreq:  1,
		ErrorTolerance: 0.001,
		Barostat:       Barostat{Pressure: 1, Frequency: 25},
	}
}

//FrictionValue returns the value passed to the engine as friction
//coefficient, which is the collision frequency for NoseHoover.
func (S *Simulation) FrictionValue() float64 {
	if S.Integrator == NoseHoover {
		return S.CollisionFreq
	}
	return S.Friction
}

//Config is a loaded configuration file. Only the field
//corresponding to Kind is set.
type Config struct {
	Kind       Kind
	Receptor   *Receptor
	System     *System
	Simulation *Simulation
}

//Input returns the input structure of whatever protocol the config is for.
func (C *Config) Input() string {
	switch C.Kind {
	case KindReceptor:
		return C.Receptor.Input
	case KindSystem:
		return C.System.Input
	}
	return C.Simulation.Input
}

//Validate validates the protocol configuration in C.
func (C *Config) Validate() error {
	switch C.Kind {
	case KindReceptor:
		return C.Receptor.Validate()
	case KindSystem:
		return C.System.Validate()
	}
	return C.Simulation.Validate()
}

//BaseName returns the name of the file at path without
//directories or extension. Output names are derived from it.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
