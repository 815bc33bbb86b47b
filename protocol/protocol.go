/*
 * protocol.go, part of gomm.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package protocol declares the step pipelines of the three gomm protocols:
//receptor preparation, system preparation and system simulation.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/binder"
	"github.com/rmera/gomm/pipeline"
)

//Step names.
const (
	StepPrepareInput = "prepare-input"
	StepFixStructure = "fix-structure"
	StepSolvate      = "solvate"
	StepSimulate     = "simulate"
	StepBindOutput   = "bind-output"
)

//Protocol is a protocol run: a pipeline and, once it succeeds, its result.
type Protocol struct {
	Kind     mm.Kind
	Pipeline *pipeline.Pipeline
	result   *binder.Result
}

//Result returns the result of the run, nil until it succeeds.
func (P *Protocol) Result() *binder.Result { return P.result }

//Run runs the pipeline with ec and returns the bound result.
func (P *Protocol) Run(ctx context.Context, ec *pipeline.ExecContext) (*binder.Result, error) {
	if err := P.Pipeline.Run(ctx, ec); err != nil {
		return nil, err
	}
	return P.result, nil
}

func (P *Protocol) bindStep(bind func(ctx context.Context, dir string) (*binder.Result, error)) pipeline.Step {
	return pipeline.NewStep(StepBindOutput, func(ctx context.Context, ec *pipeline.ExecContext) error {
		R, err := bind(ctx, ec.Dir)
		if err != nil {
			return err
		}
		P.result = R
		return nil
	})
}

//absInput returns path as an absolute path, as the engine
//runs in the run directory.
func absInput(path string) (string, error) {
	if path == "" {
		return "", errors.New("no input structure")
	}
	return filepath.Abs(path)
}

//Receptor returns the receptor preparation protocol for R. R is
//validated and copied.
func Receptor(R *mm.Receptor, B *binder.Binder) (*Protocol, error) {
	if err := R.Validate(); err != nil {
		return nil, err
	}
	r := *R
	r.Clean.Chains = append([]string(nil), R.Clean.Chains...)
	var err error
	if r.Input, err = absInput(r.Input); err != nil {
		return nil, err
	}
	P := &Protocol{Kind: mm.KindReceptor}
	P.Pipeline = pipeline.New(mm.KindReceptor.String(),
		prepareInput(&r),
		fixStructure(&r),
		P.bindStep(func(ctx context.Context, dir string) (*binder.Result, error) {
			return B.BindStructure(ctx, dir, &r)
		}))
	return P, nil
}

//System returns the system preparation protocol for S. S is validated
//and copied.
func System(S *mm.System, B *binder.Binder) (*Protocol, error) {
	if err := S.Validate(); err != nil {
		return nil, err
	}
	s := *S
	var err error
	if s.Input, err = absInput(s.Input); err != nil {
		return nil, err
	}
	P := &Protocol{Kind: mm.KindSystem}
	P.Pipeline = pipeline.New(mm.KindSystem.String(),
		solvate(&s),
		P.bindStep(func(ctx context.Context, dir string) (*binder.Result, error) {
			return B.BindSystem(ctx, dir, &s)
		}))
	return P, nil
}

//Simulation returns the simulation protocol for S. S is validated
//and copied.
func Simulation(S *mm.Simulation, B *binder.Binder) (*Protocol, error) {
	if err := S.Validate(); err != nil {
		return nil, err
	}
	s := *S
	s.GPUs = append([]int(nil), S.GPUs...)
	var err error
	if s.Input, err = absInput(s.Input); err != nil {
		return nil, err
	}
	P := &Protocol{Kind: mm.KindSimulation}
	P.Pipeline = pipeline.New(mm.KindSimulation.String(),
		simulate(&s),
		P.bindStep(func(ctx context.Context, dir string) (*binder.Result, error) {
			return B.BindSimulation(ctx, dir, &s)
		}))
	return P, nil
}

//New returns the protocol for the configuration C.
func New(C *mm.Config, B *binder.Binder) (*Protocol, error) {
	switch C.Kind {
	case mm.KindReceptor:
		return Receptor(C.Receptor, B)
	case mm.KindSystem:
		return System(C.System, B)
	case mm.KindSimulation:
		return Simulation(C.Simulation, B)
	}
	return nil, fmt.Errorf("unknown protocol kind %v", C.Kind)
}

//ErrNotSystem is returned when a simulation is requested from a result that
//is not a prepared system.
var ErrNotSystem = errors.New("result is not a prepared system")

//SimulationFromResult returns a copy of S set up to simulate the system
//prepared in the result R: its structure, force field and non-bonded settings.
func SimulationFromResult(R *binder.Result, S *mm.Simulation) (*mm.Simulation, error) {
	if R.Kind != binder.KindSystem {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotSystem, R.ID, R.Kind)
	}
	method, err := mm.ParseNonbondedMethod(R.NBMethod)
	if err != nil {
		return nil, err
	}
	s := *S
	s.GPUs = append([]int(nil), S.GPUs...)
	s.Input = R.Path(R.Structure)
	s.MainFF, s.WaterFF = R.MainFF, R.WaterFF
	s.Nonbonded = mm.Nonbonded{Method: method, Cutoff: R.NBCutoff}
	return &s, nil
}
