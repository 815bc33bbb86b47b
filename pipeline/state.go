/*
 * state.go, part of gomm.
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

package pipeline

import "fmt"

//Phase is the stage of a pipeline's life.
type Phase int

const (
	Pending Phase = iota
	Running
	Succeeded
	Failed
)

var phaseNames = []string{"pending", "running", "succeeded", "failed"}

func (P Phase) String() string {
	if P < 0 || int(P) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(P))
	}
	return phaseNames[P]
}

//Terminal is true for Succeeded and Failed.
func (P Phase) Terminal() bool {
	return P == Succeeded || P == Failed
}

//State is a snapshot of a pipeline. Step and StepName are those of the running
//step (Running) or of the one that failed (Failed). Err is only set when Failed.
type State struct {
	Phase    Phase
	Step     int
	StepName string
	Err      error
}

func (S State) String() string {
	switch S.Phase {
	case Running:
		return fmt.Sprintf("running(%d: %s)", S.Step, S.StepName)
	case Failed:
		return fmt.Sprintf("failed(%d: %s): %v", S.Step, S.StepName, S.Err)
	}
	return S.Phase.String()
}

//Observer is called on each state transition, synchronously, from the
//goroutine running the pipeline.
type Observer func(from, to State)
