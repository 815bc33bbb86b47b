/*
 * pipeline.go, part of gomm.
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

import (
	"context"
	"errors"
	"sync"
)

//Step is one stage of a pipeline. Steps run one at a time, in order,
//and block until they are done.
type Step interface {
	Name() string
	Run(ctx context.Context, ec *ExecContext) error
}

type stepFunc struct {
	name string
	f    func(ctx context.Context, ec *ExecContext) error
}

func (s stepFunc) Name() string { return s.name }

func (s stepFunc) Run(ctx context.Context, ec *ExecContext) error { return s.f(ctx, ec) }

//NewStep returns a step with the given name that runs f.
func NewStep(name string, f func(ctx context.Context, ec *ExecContext) error) Step {
	return stepFunc{name: name, f: f}
}

//ErrAlreadyRun is returned by Run when the pipeline was run before.
var ErrAlreadyRun = errors.New("pipeline already run")

//Pipeline is a fixed, ordered list of steps. It goes from Pending to Running
//through each step, and ends Succeeded after the last one, or Failed at the
//first step that returns an error. Nothing is retried or skipped, and a
//pipeline can only be run once.
type Pipeline struct {
	name      string
	steps     []Step
	mu        sync.Mutex
	state     State
	started   bool
	observers []Observer
}

//New returns a pending pipeline with the given steps.
func New(name string, steps ...Step) *Pipeline {
	return &Pipeline{name: name, steps: steps}
}

func (P *Pipeline) Name() string { return P.name }

//Steps returns the names of the steps, in order.
func (P *Pipeline) Steps() []string {
	ret := make([]string, len(P.steps))
	for i, v := range P.steps {
		ret[i] = v.Name()
	}
	return ret
}

//Observe adds an observer for the state transitions. It must be called
//before Run.
func (P *Pipeline) Observe(o Observer) {
	P.mu.Lock()
	P.observers = append(P.observers, o)
	P.mu.Unlock()
}

//State returns the current state of the pipeline. It is safe to call
//while the pipeline runs.
func (P *Pipeline) State() State {
	P.mu.Lock()
	defer P.mu.Unlock()
	return P.state
}

func (P *Pipeline) transition(to State) {
	P.mu.Lock()
	from := P.state
	P.state = to
	obs := P.observers
	P.mu.Unlock()
	for _, o := range obs {
		o(from, to)
	}
}

//Run runs the steps in order, with the execution context ec. On failure, it returns
//a *StepError for the failed step, and the pipeline ends Failed. A cancelled ctx
//fails the current step (through its command) or the next one to start.
func (P *Pipeline) Run(ctx context.Context, ec *ExecContext) error {
	P.mu.Lock()
	if P.started {
		P.mu.Unlock()
		return ErrAlreadyRun
	}
	P.started = true
	P.mu.Unlock()
	L := ec.Log()
	L.Info("pipeline started", "pipeline", P.name, "steps", len(P.steps), "dir", ec.Dir)
	for i, s := range P.steps {
		P.transition(State{Phase: Running, Step: i, StepName: s.Name()})
		L.Info("step started", "pipeline", P.name, "step", s.Name(), "index", i)
		err := ctx.Err()
		if err == nil {
			err = s.Run(ctx, ec)
		}
		if err != nil {
			serr := &StepError{Index: i, Step: s.Name(), Err: err}
			P.transition(State{Phase: Failed, Step: i, StepName: s.Name(), Err: serr})
			L.Error("step failed", "pipeline", P.name, "step", s.Name(), "index", i, "error", err)
			return serr
		}
		L.Info("step finished", "pipeline", P.name, "step", s.Name(), "index", i)
	}
	P.transition(State{Phase: Succeeded, Step: len(P.steps) - 1})
	L.Info("pipeline succeeded", "pipeline", P.name)
	return nil
}
