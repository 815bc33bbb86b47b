/*
 * steps.go, part of gomm.
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

package protocol

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/binder"
	"github.com/rmera/gomm/paramfile"
	"github.com/rmera/gomm/pdb"
	"github.com/rmera/gomm/pipeline"
)

//runLogged runs C with its output going to the file <step>.log in the run directory.
func runLogged(ctx context.Context, ec *pipeline.ExecContext, step string, C pipeline.Command) error {
	f, err := os.Create(filepath.Join(ec.Dir, step+".log"))
	if err != nil {
		return err
	}
	defer f.Close()
	C.Stdout = f
	C.Stderr = f
	return ec.Run(ctx, C)
}

func writeParams(ec *pipeline.ExecContext, F *paramfile.File, err error) (string, error) {
	if err != nil {
		return "", err
	}
	name := filepath.Join(ec.Dir, F.Name())
	if err := F.WriteFile(name); err != nil {
		return "", fmt.Errorf("writing %s: %w", F.Name(), err)
	}
	return F.Name(), nil
}

func prepareInput(R *mm.Receptor) pipeline.Step {
	return pipeline.NewStep(StepPrepareInput, func(ctx context.Context, ec *pipeline.ExecContext) error {
		out := filepath.Join(ec.Dir, binder.PreparedStructure(R.Input))
		rep, err := pdb.CleanFile(R.Input, out, R.Clean)
		if err != nil {
			return err
		}
		ec.Log().Info("input structure prepared", "input", R.Input, "output", out,
			"kept", rep.Kept, "waters", rep.Waters, "hetero", rep.Hetero,
			"other_chains", rep.OtherChains, "other_altlocs", rep.OtherAltLocs)
		return nil
	})
}

//FixerArgs returns the arguments for the structure repair program for R.
func FixerArgs(R *mm.Receptor) []string {
	prepared := binder.PreparedStructure(R.Input)
	args := []string{prepared, "--add-atoms=" + R.AddAtoms.Flag()}
	if R.AddResidues {
		args = append(args, "--add-residues")
	}
	if R.ReplaceNonstandard {
		args = append(args, "--replace-nonstandard")
	}
	return append(args, "--output", prepared)
}

func fixStructure(R *mm.Receptor) pipeline.Step {
	return pipeline.NewStep(StepFixStructure, func(ctx context.Context, ec *pipeline.ExecContext) error {
		prepared := filepath.Join(ec.Dir, binder.PreparedStructure(R.Input))
		before, err := pdb.Count(prepared)
		if err != nil {
			return err
		}
		if err := runLogged(ctx, ec, StepFixStructure, ec.Command(ec.Commands.Fixer, FixerArgs(R)...)); err != nil {
			return err
		}
		after, err := pdb.Count(prepared)
		if err != nil {
			return fmt.Errorf("reading the repaired structure: %w", err)
		}
		ec.Log().Info("structure repaired", "structure", prepared, "atoms_before", before, "atoms_after", after)
		return nil
	})
}

func solvate(S *mm.System) pipeline.Step {
	return pipeline.NewStep(StepSolvate, func(ctx context.Context, ec *pipeline.ExecContext) error {
		F, err := S.Params()
		params, err := writeParams(ec, F, err)
		if err != nil {
			return err
		}
		return runLogged(ctx, ec, StepSolvate, ec.Command(ec.Commands.Engine, params))
	})
}

func simulate(S *mm.Simulation) pipeline.Step {
	return pipeline.NewStep(StepSimulate, func(ctx context.Context, ec *pipeline.ExecContext) error {
		for _, w := range S.Warnings() {
			ec.Log().Warn(w, "step", StepSimulate)
		}
		F, err := S.Params()
		params, err := writeParams(ec, F, err)
		if err != nil {
			return err
		}
		return runLogged(ctx, ec, StepSimulate, ec.Command(ec.Commands.Engine, params))
	})
}
