/*
 * load.go, part of gomm.
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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

//The configuration files are decoded into these structures, where every
//field is optional. The fields that are present are then laid over the defaults.
//Enumerations travel as their labels.

type cleanFile struct {
	RemoveWaters *bool    `yaml:"remove_waters" hcl:"remove_waters,optional"`
	RemoveHetero *bool    `yaml:"remove_hetero" hcl:"remove_hetero,optional"`
	Chains       []string `yaml:"chains" hcl:"chains,optional"`
	FirstAltLoc  *bool    `yaml:"first_altloc" hcl:"first_altloc,optional"`
}

type receptorFile struct {
	Input              *string    `yaml:"input" hcl:"input,optional"`
	AddAtoms           *string    `yaml:"add_atoms" hcl:"add_atoms,optional"`
	AddResidues        *bool      `yaml:"add_residues" hcl:"add_residues,optional"`
	ReplaceNonstandard *bool      `yaml:"replace_nonstandard" hcl:"replace_nonstandard,optional"`
	Clean              *cleanFile `yaml:"clean" hcl:"clean,block"`
}

type forceFieldFile struct {
	Family *string `yaml:"family" hcl:"family,optional"`
	Main   *string `yaml:"main" hcl:"main,optional"`
	Water  *string `yaml:"water" hcl:"water,optional"`
}

type nonbondedFile struct {
	Method *string  `yaml:"method" hcl:"method,optional"`
	Cutoff *float64 `yaml:"cutoff" hcl:"cutoff,optional"`
}

type boxFile struct {
	Kind    *string   `yaml:"kind" hcl:"kind,optional"`
	Size    []float64 `yaml:"size" hcl:"size,optional"`
	Padding *float64  `yaml:"padding" hcl:"padding,optional"`
}

type systemFile struct {
	Input        *string         `yaml:"input" hcl:"input,optional"`
	ForceField   *forceFieldFile `yaml:"forcefield" hcl:"forcefield,block"`
	Nonbonded    *nonbondedFile  `yaml:"nonbonded" hcl:"nonbonded,block"`
	AddHydrogens *bool           `yaml:"add_hydrogens" hcl:"add_hydrogens,optional"`
	PH           *float64        `yaml:"ph" hcl:"ph,optional"`
	Box          *boxFile        `yaml:"box" hcl:"box,block"`
	SaltConc     *float64        `yaml:"salt_concentration" hcl:"salt_concentration,optional"`
	Neutralize   *bool           `yaml:"neutralize" hcl:"neutralize,optional"`
	Cation       *string         `yaml:"cation" hcl:"cation,optional"`
	Anion        *string         `yaml:"anion" hcl:"anion,optional"`
}

type minimizationFile struct {
	Enabled   *bool    `yaml:"enabled" hcl:"enabled,optional"`
	Tolerance *float64 `yaml:"tolerance" hcl:"tolerance,optional"`
	MaxIter   *int     `yaml:"max_iterations" hcl:"max_iterations,optional"`
}

type barostatFile struct {
	Enabled   *bool    `yaml:"enabled" hcl:"enabled,optional"`
	Pressure  *float64 `yaml:"pressure" hcl:"pressure,optional"`
	Frequency *int     `yaml:"frequency" hcl:"frequency,optional"`
}

type simulationFile struct {
	Input          *string           `yaml:"input" hcl:"input,optional"`
	MainFF         *string           `yaml:"forcefield" hcl:"forcefield,optional"`
	WaterFF        *string           `yaml:"water_forcefield" hcl:"water_forcefield,optional"`
	Nonbonded      *nonbondedFile    `yaml:"nonbonded" hcl:"nonbonded,block"`
	Steps          *int              `yaml:"steps" hcl:"steps,optional"`
	TrajInterval   *int              `yaml:"trajectory_interval" hcl:"trajectory_interval,optional"`
	Constraints    *string           `yaml:"constraints" hcl:"constraints,optional"`
	Minimization   *minimizationFile `yaml:"minimization" hcl:"minimization,block"`
	Integrator     *string           `yaml:"integrator" hcl:"integrator,optional"`
	StepSize       *float64          `yaml:"step_size" hcl:"step_size,optional"`
	Friction       *float64          `yaml:"friction" hcl:"friction,optional"`
	Temperature    *float64          `yaml:"temperature" hcl:"temperature,optional"`
	CollisionFreq  *float64          `yaml:"collision_frequency" hcl:"collision_frequency,optional"`
	ErrorTolerance *float64          `yaml:"error_tolerance" hcl:"error_tolerance,optional"`
	Barostat       *barostatFile     `yaml:"barostat" hcl:"barostat,block"`
	GPUs           []int             `yaml:"gpus" hcl:"gpus,optional"`
}

type configFile struct {
	Receptor   *receptorFile   `yaml:"receptor" hcl:"receptor,block"`
	System     *systemFile     `yaml:"system" hcl:"system,block"`
	Simulation *simulationFile `yaml:"simulation" hcl:"simulation,block"`
}

//ErrNoProtocol is returned when a configuration file has zero or more than
//one of the receptor, system and simulation sections.
var ErrNoProtocol = errors.New("configuration must have exactly one receptor, system or simulation section")

//LoadFile reads the configuration file name. Files ending in .hcl are read as HCL,
//.yaml and .yml as YAML. Relative input paths in the file are taken as relative to
//the directory containing it.
func LoadFile(name string) (*Config, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(name)
	var C *Config
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hcl":
		C, err = LoadHCL(src, name, os.Environ())
	case ".yaml", ".yml":
		C, err = LoadYAML(bytes.NewReader(src))
	default:
		return nil, fmt.Errorf("configuration file %s: unknown format %q, use .yaml, .yml or .hcl", name, filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("configuration file %s: %w", name, err)
	}
	C.resolveInput(dir)
	return C, nil
}

//LoadYAML decodes a YAML configuration from r. Unknown fields are an error.
func LoadYAML(r io.Reader) (*Config, error) {
	var f configFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	return f.config()
}

//WriteYAML writes C, every value included, as a YAML configuration that
//LoadYAML reads back into the same configuration. Enumerations are written
//with their labels.
func (C *Config) WriteYAML(w io.Writer) error {
	var out struct {
		Receptor   *Receptor   `yaml:"receptor,omitempty"`
		System     *System     `yaml:"system,omitempty"`
		Simulation *Simulation `yaml:"simulation,omitempty"`
	}
	switch C.Kind {
	case KindReceptor:
		out.Receptor = C.Receptor
	case KindSystem:
		out.System = C.System
	default:
		out.Simulation = C.Simulation
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

//LoadHCL decodes an HCL configuration. filename is used only in diagnostics.
//Expressions can refer to the environment variables in environ (KEY=VALUE
//strings) as env.KEY.
func LoadHCL(src []byte, filename string, environ []string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %w", diags)
	}
	var f configFile
	diags = gohcl.DecodeBody(file.Body, envContext(environ), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding HCL: %w", diags)
	}
	return f.config()
}

//envContext exposes the environment as the env object. Variables whose names
//are not valid identifiers are left out.
func envContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, v := range environ {
		key, value, ok := strings.Cut(v, "=")
		if !ok || !hclsyntax.ValidIdentifier(key) {
			continue
		}
		vars[key] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

func (C *Config) resolveInput(dir string) {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	switch C.Kind {
	case KindReceptor:
		abs(&C.Receptor.Input)
	case KindSystem:
		abs(&C.System.Input)
	case KindSimulation:
		abs(&C.Simulation.Input)
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setEnum[T any](dst *T, src *string, parse func(string) (T, error)) error {
	if src == nil {
		return nil
	}
	v, err := parse(*src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (f *configFile) config() (*Config, error) {
	n := 0
	for _, present := range []bool{f.Receptor != nil, f.System != nil, f.Simulation != nil} {
		if present {
			n++
		}
	}
	if n != 1 {
		return nil, ErrNoProtocol
	}
	C := new(Config)
	var err error
	switch {
	case f.Receptor != nil:
		C.Kind = KindReceptor
		C.Receptor, err = f.Receptor.overlay(DefaultReceptor())
	case f.System != nil:
		C.Kind = KindSystem
		C.System, err = f.System.overlay(DefaultSystem())
	default:
		C.Kind = KindSimulation
		C.Simulation, err = f.Simulation.overlay(DefaultSimulation())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", C.Kind, err)
	}
	return C, nil
}

func (f *receptorFile) overlay(R *Receptor) (*Receptor, error) {
	set(&R.Input, f.Input)
	if err := setEnum(&R.AddAtoms, f.AddAtoms, ParseAddAtoms); err != nil {
		return nil, err
	}
	set(&R.AddResidues, f.AddResidues)
	set(&R.ReplaceNonstandard, f.ReplaceNonstandard)
	if c := f.Clean; c != nil {
		set(&R.Clean.RemoveWaters, c.RemoveWaters)
		set(&R.Clean.RemoveHetero, c.RemoveHetero)
		set(&R.Clean.FirstAltLoc, c.FirstAltLoc)
		if c.Chains != nil {
			R.Clean.Chains = c.Chains
		}
	}
	return R, nil
}

func (f *nonbondedFile) overlay(N *Nonbonded) error {
	if f == nil {
		return nil
	}
	set(&N.Cutoff, f.Cutoff)
	return setEnum(&N.Method, f.Method, ParseNonbondedMethod)
}

func (f *systemFile) overlay(S *System) (*System, error) {
	set(&S.Input, f.Input)
	if ff := f.ForceField; ff != nil {
		if err := setEnum(&S.ForceField.Family, ff.Family, ParseFFFamily); err != nil {
			return nil, err
		}
		set(&S.ForceField.Main, ff.Main)
		set(&S.ForceField.Water, ff.Water)
	}
	if err := f.Nonbonded.overlay(&S.Nonbonded); err != nil {
		return nil, err
	}
	set(&S.AddHydrogens, f.AddHydrogens)
	set(&S.PH, f.PH)
	if b := f.Box; b != nil {
		if err := setEnum(&S.Box.Kind, b.Kind, ParseBoxKind); err != nil {
			return nil, err
		}
		if b.Size != nil {
			if len(b.Size) != 3 {
				return nil, fmt.Errorf("box size needs 3 edges, got %d", len(b.Size))
			}
			copy(S.Box.Size[:], b.Size)
		}
		set(&S.Box.Padding, b.Padding)
	}
	set(&S.SaltConc, f.SaltConc)
	set(&S.Neutralize, f.Neutralize)
	if err := setEnum(&S.Cation, f.Cation, ParseCation); err != nil {
		return nil, err
	}
	if err := setEnum(&S.Anion, f.Anion, ParseAnion); err != nil {
		return nil, err
	}
	return S, nil
}

func (f *simulationFile) overlay(S *Simulation) (*Simulation, error) {
	set(&S.Input, f.Input)
	set(&S.MainFF, f.MainFF)
	set(&S.WaterFF, f.WaterFF)
	if err := f.Nonbonded.overlay(&S.Nonbonded); err != nil {
		return nil, err
	}
	set(&S.Steps, f.Steps)
	set(&S.TrajInterval, f.TrajInterval)
	if err := setEnum(&S.Constraints, f.Constraints, ParseConstraints); err != nil {
		return nil, err
	}
	if m := f.Minimization; m != nil {
		set(&S.Minimization.Enabled, m.Enabled)
		set(&S.Minimization.Tolerance, m.Tolerance)
		set(&S.Minimization.MaxIter, m.MaxIter)
	}
	if err := setEnum(&S.Integrator, f.Integrator, ParseIntegrator); err != nil {
		return nil, err
	}
	set(&S.StepSize, f.StepSize)
	set(&S.Friction, f.Friction)
	set(&S.Temperature, f.Temperature)
	set(&S.CollisionFreq, f.CollisionFreq)
	set(&S.ErrorTolerance, f.ErrorTolerance)
	if b := f.Barostat; b != nil {
		set(&S.Barostat.Enabled, b.Enabled)
		set(&S.Barostat.Pressure, b.Pressure)
		set(&S.Barostat.Frequency, b.Frequency)
	}
	if f.GPUs != nil {
		S.GPUs = f.GPUs
	}
	return S, nil
}
