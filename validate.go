/*
 * validate.go, part of gomm.
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
	"errors"
	"fmt"
)

//ValidationError is a problem with one field of a configuration.
type ValidationError struct {
	Field string
	Msg   string
}

func (E *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", E.Field, E.Msg)
}

//ErrInvalidConfig is wrapped by all the errors returned by the Validate methods.
var ErrInvalidConfig = errors.New("invalid configuration")

type checker struct {
	errs []error
}

func (c *checker) check(ok bool, field, format string, args ...any) {
	if !ok {
		c.errs = append(c.errs, &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}
}

func (c *checker) add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(c.errs...))
}

func (c *checker) nonbonded(N Nonbonded) {
	c.check(N.Method >= NoCutoff && N.Method <= LJPME, "nonbonded method", "unknown method %d", int(N.Method))
	c.check(N.Cutoff >= 0, "nonbonded cutoff", "%g nm is negative", N.Cutoff)
}

//Validate returns all the problems found in the receptor configuration,
//joined, or nil.
func (R *Receptor) Validate() error {
	c := new(checker)
	c.check(R.Input != "", "input", "no input structure given")
	c.check(R.AddAtoms >= AddAll && R.AddAtoms <= AddNone, "add_atoms", "unknown choice %d", int(R.AddAtoms))
	for _, v := range R.Clean.Chains {
		c.check(len(v) == 1, "chains", "chain ID %q is not a single character", v)
	}
	return c.err()
}

//Validate returns all the problems found in the system configuration,
//joined, or nil.
func (S *System) Validate() error {
	c := new(checker)
	c.check(S.Input != "", "input", "no input structure given")
	c.add(S.ForceField.Validate())
	c.nonbonded(S.Nonbonded)
	if S.AddHydrogens {
		c.check(S.PH >= 0 && S.PH <= 14, "ph", "%g is out of the 0-14 range", S.PH)
	}
	switch S.Box.Kind {
	case Absolute:
		for i, v := range S.Box.Size {
			c.check(v > 0, "box size", "edge %d is %g nm, must be positive", i, v)
		}
	case Padding:
		c.check(S.Box.Padding > 0, "box padding", "%g nm, must be positive", S.Box.Padding)
	default:
		c.check(false, "box kind", "unknown kind %d", int(S.Box.Kind))
	}
	c.check(S.SaltConc >= 0, "salt_concentration", "%g M is negative", S.SaltConc)
	c.check(S.Cation >= CsIon && S.Cation <= RbIon, "cation", "unknown cation %d", int(S.Cation))
	c.check(S.Anion >= ClIon && S.Anion <= IIon, "anion", "unknown anion %d", int(S.Anion))
	return c.err()
}

//Validate returns all the problems found in the simulation configuration,
//joined, or nil.
func (S *Simulation) Validate() error {
	c := new(checker)
	c.check(S.Input != "", "input", "no input structure given")
	c.check(S.MainFF != "", "forcefield", "no main force field file given")
	c.check(S.WaterFF != "", "water_forcefield", "no water force field file given")
	c.nonbonded(S.Nonbonded)
	c.check(S.Steps > 0, "steps", "%d, must be positive", S.Steps)
	c.check(S.TrajInterval > 0, "trajectory_interval", "%d, must be positive", S.TrajInterval)
	c.check(S.TrajInterval <= S.Steps, "trajectory_interval", "%d is larger than the number of steps (%d)", S.TrajInterval, S.Steps)
	c.check(S.Constraints >= NoConstraints && S.Constraints <= HAngles, "constraints", "unknown choice %d", int(S.Constraints))
	I := S.Integrator
	c.check(I >= Verlet && I <= VariableLangevin, "integrator", "unknown integrator %d", int(I))
	if I.UsesStepSize() {
		c.check(S.StepSize > 0, "step_size", "%g ps, must be positive", S.StepSize)
	}
	if I.UsesTemperature() || S.Barostat.Enabled {
		c.check(S.Temperature > 0, "temperature", "%g K, must be positive", S.Temperature)
	}
	if I.UsesFriction() {
		if I == NoseHoover {
			c.check(S.CollisionFreq > 0, "collision_frequency", "%g 1/ps, must be positive", S.CollisionFreq)
		} else {
			c.check(S.Friction > 0, "friction", "%g 1/ps, must be positive", S.Friction)
		}
	}
	if I.UsesErrorTolerance() {
		c.check(S.ErrorTolerance > 0, "error_tolerance", "%g, must be positive", S.ErrorTolerance)
	}
	if S.Minimization.Enabled {
		c.check(S.Minimization.Tolerance > 0, "minimization tolerance", "%g kJ/mol/nm, must be positive", S.Minimization.Tolerance)
		c.check(S.Minimization.MaxIter >= 0, "minimization max_iterations", "%d is negative", S.Minimization.MaxIter)
	}
	if S.Barostat.Enabled {
		c.check(S.Barostat.Pressure > 0, "barostat pressure", "%g bar, must be positive", S.Barostat.Pressure)
		c.check(S.Barostat.Frequency > 0, "barostat frequency", "%d, must be positive", S.Barostat.Frequency)
	}
	for _, v := range S.GPUs {
		c.check(v >= 0, "gpus", "device index %d is negative", v)
	}
	return c.err()
}

//Warnings returns the settings of S that are valid but can make the
//simulation fail or misbehave.
func (S *Simulation) Warnings() []string {
	var ret []string
	if S.Constraints == NoConstraints {
		ret = append(ret, "running the simulation without constraints might lead to errors in the simulation")
	}
	if !S.Minimization.Enabled {
		ret = append(ret, "running the simulation without a prior minimization might lead to errors in the simulation")
	}
	return ret
}
