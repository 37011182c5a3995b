/*
Copyright © 2026 the boustherm authors.
This file is part of boustherm.

boustherm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

boustherm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with boustherm.  If not, see <http://www.gnu.org/licenses/>.
*/

package boustherm

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Host supplies the right-hand side of the equations being integrated and
// receives callbacks as the integration proceeds. A non-nil error returned
// by any callback stops the integration.
type Host interface {
	// Derivative stores the time derivative of state at time t in out.
	Derivative(state []float64, t float64, out []float64)

	// BeforeSolve is called once before the first step.
	BeforeSolve(s *Solver) error

	// AfterStep is called after every completed step. It may modify
	// s.State().
	AfterStep(s *Solver) error

	// AfterSnap is called after snapshot isnap has been taken.
	AfterSnap(s *Solver, isnap int) error

	// AfterSolve is called once after the last step.
	AfterSolve(s *Solver) error
}

// Solver integrates a system of ordinary differential equations with the
// explicit trapezoid method (Heun's method) at a fixed time step.
type Solver struct {
	// Out, if not nil, receives a copy of the state at every snapshot as
	// "snap_<i>" and the snapshot times as "snap_t".
	Out Writer

	y, k1, k2, tmp []float64

	t, dt     float64
	step      int
	snapTimes []float64
}

// NewSolver returns a solver starting from a copy of y0 at time 0.
func NewSolver(y0 []float64) *Solver {
	n := len(y0)
	return &Solver{
		y:   copyFloats(y0),
		k1:  make([]float64, n),
		k2:  make([]float64, n),
		tmp: make([]float64, n),
	}
}

// State returns the current solution. Hooks may modify it in place.
func (s *Solver) State() []float64 { return s.y }

// Time returns the current model time [s].
func (s *Solver) Time() float64 { return s.t }

// Dt returns the time step [s].
func (s *Solver) Dt() float64 { return s.dt }

// Step returns the number of steps taken.
func (s *Solver) Step() int { return s.step }

// SnapTimes returns the times of the snapshots taken so far.
func (s *Solver) SnapTimes() []float64 { return copyFloats(s.snapTimes) }

// SolveFixed integrates from the current time over duration tint [s] with
// time step dt [s]. The number of steps is tint/dt rounded to the nearest
// integer. Snapshots are taken at the start and at nsnap evenly spaced
// steps, the last of which is the final step; at least one snapshot is
// always taken at the end.
func (s *Solver) SolveFixed(ctx context.Context, tint, dt float64, nsnap int, h Host) error {
	if !(dt > 0) || !(tint > 0) {
		return fmt.Errorf("boustherm: invalid integration: duration %g, time step %g", tint, dt)
	}
	nstep := int(math.Round(tint / dt))
	if nstep < 1 {
		nstep = 1
	}
	if nsnap < 1 {
		nsnap = 1
	}
	if nsnap > nstep {
		nsnap = nstep
	}
	s.dt = dt

	if err := h.BeforeSolve(s); err != nil {
		return err
	}
	isnap := 0
	if err := s.snap(ctx, h, isnap); err != nil {
		return err
	}
	isnap++
	nextSnap := snapStep(isnap, nsnap, nstep)

	for i := 1; i <= nstep; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.trapezoid(h)
		s.step++
		if err := h.AfterStep(s); err != nil {
			return err
		}
		if i == nextSnap {
			if err := s.snap(ctx, h, isnap); err != nil {
				return err
			}
			isnap++
			nextSnap = snapStep(isnap, nsnap, nstep)
		}
	}
	if s.Out != nil {
		if err := s.Out.WriteArray(ctx, "snap_t", s.snapTimes); err != nil {
			return err
		}
	}
	return h.AfterSolve(s)
}

// snapStep returns the step number of snapshot isnap.
func snapStep(isnap, nsnap, nstep int) int {
	if isnap > nsnap {
		return -1
	}
	return int(math.Round(float64(isnap) * float64(nstep) / float64(nsnap)))
}

// trapezoid advances the solution by one step.
func (s *Solver) trapezoid(h Host) {
	h.Derivative(s.y, s.t, s.k1)
	floats.AddScaledTo(s.tmp, s.y, s.dt, s.k1)
	h.Derivative(s.tmp, s.t+s.dt, s.k2)
	floats.Add(s.k1, s.k2)
	floats.AddScaled(s.y, s.dt/2, s.k1)
	s.t += s.dt
}

func (s *Solver) snap(ctx context.Context, h Host, isnap int) error {
	s.snapTimes = append(s.snapTimes, s.t)
	if s.Out != nil {
		if err := s.Out.WriteArray(ctx, "snap_"+strconv.Itoa(isnap), s.y); err != nil {
			return err
		}
	}
	return h.AfterSnap(s, isnap)
}
