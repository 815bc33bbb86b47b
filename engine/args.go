/*
 * args.go, part of gomm.
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

	mm "github.com/rmera/gomm"
	"github.com/rmera/gomm/paramfile"
)

//Arg is one positional argument of an integrator constructor.
type Arg struct {
	Name  string //the parameter file key it comes from
	Value float64
	unit  string
}

//Python returns the argument as an engine expression, with its unit.
func (A Arg) Python() string {
	v := paramfile.FormatFloat(A.Value)
	if A.unit == "" {
		return v
	}
	return v + A.unit
}

//The arguments each integrator constructor takes, in order.
var integratorArgs = map[mm.Integrator][]string{
	mm.Verlet:           {"stepSize"},
	mm.Langevin:         {"temperature", "fricCoef", "stepSize"},
	mm.LangevinMiddle:   {"temperature", "fricCoef", "stepSize"},
	mm.Brownian:         {"temperature", "fricCoef", "stepSize"},
	mm.NoseHoover:       {"temperature", "fricCoef", "stepSize"},
	mm.VariableVerlet:   {"errTol"},
	mm.VariableLangevin: {"temperature", "fricCoef", "errTol"},
}

//IntegratorArgs returns the positional arguments for the integrator of S.
func IntegratorArgs(S *SimulateRequest) ([]Arg, error) {
	names, ok := integratorArgs[S.Integrator]
	if !ok {
		return nil, fmt.Errorf("no argument list for integrator %s", S.Integrator)
	}
	ret := make([]Arg, 0, len(names))
	for _, v := range names {
		var A Arg
		switch v {
		case "temperature":
			A = Arg{v, S.Temperature, "*kelvin"}
		case "fricCoef":
			A = Arg{v, S.Friction, "/picosecond"}
		case "stepSize":
			A = Arg{v, S.StepSize, "*picoseconds"}
		case "errTol":
			A = Arg{v, S.ErrorTolerance, ""}
		}
		ret = append(ret, A)
	}
	return ret, nil
}
