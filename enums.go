/*
 * enums.go, part of gomm.
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
	"strings"
)

//All the enumerations here are written to files with their labels, which must
//be spelled exactly as the engine expects them. The order of each label slice is
//the order of the choices in the original forms, and the value of the constants.

func label(labels []string, i int, typename string) string {
	if i < 0 || i >= len(labels) {
		return fmt.Sprintf("%s(%d)", typename, i)
	}
	return labels[i]
}

//parseLabel returns the index of s in labels. An exact match is preferred,
//otherwise the match is case-insensitive.
func parseLabel(labels []string, s, typename string) (int, error) {
	s = strings.TrimSpace(s)
	for i, v := range labels {
		if v == s {
			return i, nil
		}
	}
	for i, v := range labels {
		if strings.EqualFold(v, s) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown %s %q, valid choices: %s", typename, s, strings.Join(labels, ", "))
}

/****Integrator****/

//Integrator is the numerical scheme used to advance the simulation.
type Integrator int

const (
	Verlet Integrator = iota
	Langevin
	LangevinMiddle
	NoseHoover
	Brownian
	VariableVerlet
	VariableLangevin
)

var integratorLabels = []string{"Verlet", "Langevin", "LangevinMiddle", "NoseHoover", "Brownian", "VariableVerlet", "VariableLangevin"}

//Integrators returns all the integrators, in declaration order.
func Integrators() []Integrator {
	ret := make([]Integrator, len(integratorLabels))
	for i := range ret {
		ret[i] = Integrator(i)
	}
	return ret
}

func (I Integrator) String() string { return label(integratorLabels, int(I), "Integrator") }

//ParseIntegrator returns the integrator with the given label.
func ParseIntegrator(s string) (Integrator, error) {
	i, err := parseLabel(integratorLabels, s, "integrator")
	return Integrator(i), err
}

//UsesTemperature is true for the integrators coupled to a heat bath.
func (I Integrator) UsesTemperature() bool {
	return I != Verlet && I != VariableVerlet
}

//UsesFriction is true for the integrators that take a friction coefficient
//(the collision frequency, for NoseHoover).
func (I Integrator) UsesFriction() bool {
	switch I {
	case Langevin, LangevinMiddle, NoseHoover, Brownian, VariableLangevin:
		return true
	}
	return false
}

//UsesStepSize is true for fixed-step integrators.
func (I Integrator) UsesStepSize() bool {
	return !I.Variable()
}

//UsesErrorTolerance is true for variable-step integrators.
func (I Integrator) UsesErrorTolerance() bool {
	return I.Variable()
}

//Variable is true for the variable-step integrators.
func (I Integrator) Variable() bool {
	return I == VariableVerlet || I == VariableLangevin
}

func (I Integrator) MarshalText() ([]byte, error) { return []byte(I.String()), nil }

/****Constraints****/

//Constraints selects which bonds and angles are kept rigid.
type Constraints int

const (
	NoConstraints Constraints = iota
	HBonds
	AllBonds
	HAngles
)

var constraintsLabels = []string{"None", "HBonds", "AllBonds", "HAngles"}

func (C Constraints) String() string { return label(constraintsLabels, int(C), "Constraints") }

func ParseConstraints(s string) (Constraints, error) {
	i, err := parseLabel(constraintsLabels, s, "constraints")
	return Constraints(i), err
}

func (C Constraints) MarshalText() ([]byte, error) { return []byte(C.String()), nil }

/****Non bonded methods****/

//NonbondedMethod is the treatment of the non bonded interactions.
type NonbondedMethod int

const (
	NoCutoff NonbondedMethod = iota
	CutoffNonPeriodic
	CutoffPeriodic
	Ewald
	PME
	LJPME
)

var nonbondedLabels = []string{"NoCutoff", "CutoffNonPeriodic", "CutoffPeriodic", "Ewald", "PME", "LJPME"}

func (N NonbondedMethod) String() string { return label(nonbondedLabels, int(N), "NonbondedMethod") }

func ParseNonbondedMethod(s string) (NonbondedMethod, error) {
	i, err := parseLabel(nonbondedLabels, s, "non bonded method")
	return NonbondedMethod(i), err
}

//Periodic is true for the methods that require a periodic box.
func (N NonbondedMethod) Periodic() bool {
	return N != NoCutoff && N != CutoffNonPeriodic
}

func (N NonbondedMethod) MarshalText() ([]byte, error) { return []byte(N.String()), nil }

/****Ions****/

type Cation int

const (
	CsIon Cation = iota
	KIon
	LiIon
	NaIon
	RbIon
)

var cationLabels = []string{"Cs+", "K+", "Li+", "Na+", "Rb+"}

func (C Cation) String() string { return label(cationLabels, int(C), "Cation") }

func ParseCation(s string) (Cation, error) {
	i, err := parseLabel(cationLabels, s, "cation")
	return Cation(i), err
}

func (C Cation) MarshalText() ([]byte, error) { return []byte(C.String()), nil }

type Anion int

const (
	ClIon Anion = iota
	BrIon
	FIon
	IIon
)

var anionLabels = []string{"Cl-", "Br-", "F-", "I-"}

func (A Anion) String() string { return label(anionLabels, int(A), "Anion") }

func ParseAnion(s string) (Anion, error) {
	i, err := parseLabel(anionLabels, s, "anion")
	return Anion(i), err
}

func (A Anion) MarshalText() ([]byte, error) { return []byte(A.String()), nil }

/****Structure repair****/

//AddAtoms selects which missing atoms the repair tool adds.
type AddAtoms int

const (
	AddAll AddAtoms = iota
	AddHeavy
	AddHydrogen
	AddNone
)

var addAtomsLabels = []string{"All", "Heavy", "Hydrogen", "None"}

func (A AddAtoms) String() string { return label(addAtomsLabels, int(A), "AddAtoms") }

//Flag returns the value for the --add-atoms option of the repair tool.
func (A AddAtoms) Flag() string { return strings.ToLower(A.String()) }

func ParseAddAtoms(s string) (AddAtoms, error) {
	i, err := parseLabel(addAtomsLabels, s, "add-atoms choice")
	return AddAtoms(i), err
}

func (A AddAtoms) MarshalText() ([]byte, error) { return []byte(A.String()), nil }

/****Solvent box****/

type BoxKind int

const (
	Absolute BoxKind = iota
	Padding
)

var boxKindLabels = []string{"Absolute", "Padding"}

func (B BoxKind) String() string { return label(boxKindLabels, int(B), "BoxKind") }

func ParseBoxKind(s string) (BoxKind, error) {
	i, err := parseLabel(boxKindLabels, s, "box kind")
	return BoxKind(i), err
}

func (B BoxKind) MarshalText() ([]byte, error) { return []byte(B.String()), nil }
