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
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// DomainManipulator is a function that inspects or modifies a running
// simulation.
type DomainManipulator func(s *Simulation) error

// Series holds time series of domain totals, with one value per step.
type Series struct {
	T        []float64 // model time [s]
	Evap     []float64 // total evaporation rate [m²/s]
	EvapW    []float64 // evaporation rate per evaporating width [m/s]
	MaxAqbot []float64 // shallowest freezing front [m]
	MinAqbot []float64 // deepest freezing front [m]
}

// Simulation runs a Model forward in time and keeps track of the
// quantities that are not part of the model state. It implements Host.
type Simulation struct {
	*Model

	Settings Settings

	// Out receives model output. If nil, nothing is written.
	Out Writer

	Log logrus.FieldLogger

	// InitFuncs run before the first step, StepFuncs after every step,
	// SnapFuncs after every snapshot and CleanupFuncs after the last step.
	InitFuncs, StepFuncs, SnapFuncs, CleanupFuncs []DomainManipulator

	// Evap and EvapW are the evaporation rate of each horizontal cell
	// during the most recent step, in m²/s and m/s. CumEvap is the
	// cumulative evaporation of each cell [m²].
	Evap, EvapW, CumEvap []float64

	Series Series

	solver  *Solver
	ctx     context.Context
	isnap   int
	started time.Time
}

// NewSimulation returns a simulation of m using settings s with the
// standard set of manipulators: evaporation, forced recharge if s.Rmax is
// set, time series tracking, a stability check, field dumps and logging.
func NewSimulation(m *Model, s Settings, out Writer) *Simulation {
	nx := m.grid.nx
	sim := &Simulation{
		Model:    m,
		Settings: s,
		Out:      out,
		Log:      logrus.StandardLogger(),
		Evap:     make([]float64, nx),
		EvapW:    make([]float64, nx),
		CumEvap:  make([]float64, nx),
	}
	sim.InitFuncs = []DomainManipulator{WriteProfiles()}
	sim.StepFuncs = []DomainManipulator{Evaporation()}
	if s.Rmax {
		sim.StepFuncs = append(sim.StepFuncs, ForceRecharge())
	}
	sim.StepFuncs = append(sim.StepFuncs, TrackSeries())
	sim.SnapFuncs = []DomainManipulator{
		DumpFields(),
		Log(),
		StabilityCheck(s.MaxGradH),
	}
	sim.CleanupFuncs = []DomainManipulator{WriteSeries(s.NMaxOut)}
	return sim
}

// Run integrates the model from its initial state over the duration
// given in the settings.
func (sim *Simulation) Run(ctx context.Context) error {
	sv := NewSolver(sim.InitialState(sim.Settings.Hdep0))
	sv.Out = sim.Out
	sim.ctx = ctx
	return sv.SolveFixed(ctx, sim.Settings.Duration(), sim.Settings.Dt(), sim.Settings.NSnap, sim)
}

// Solver returns the solver running the simulation, or nil if the
// simulation hasn't started.
func (sim *Simulation) Solver() *Solver { return sim.solver }

// H returns the current water table. It shares memory with the solver
// state.
func (sim *Simulation) H() []float64 { return sim.layout.H(sim.solver.State()) }

// Snapshot returns the index of the most recent snapshot.
func (sim *Simulation) Snapshot() int { return sim.isnap }

// Context returns the context of the running simulation.
func (sim *Simulation) Context() context.Context {
	if sim.ctx == nil {
		return context.Background()
	}
	return sim.ctx
}

func (sim *Simulation) runFuncs(funcs []DomainManipulator) error {
	for _, f := range funcs {
		if err := f(sim); err != nil {
			return err
		}
	}
	return nil
}

// BeforeSolve implements Host. It evaluates the derivative once so that
// the model fields describe the initial state.
func (sim *Simulation) BeforeSolve(s *Solver) error {
	sim.solver = s
	sim.started = time.Now()
	for j := range sim.Evap {
		sim.Evap[j], sim.EvapW[j], sim.CumEvap[j] = 0, 0, 0
	}
	sim.Series = Series{}
	sim.Derivative(s.State(), s.Time(), make([]float64, sim.layout.Len()))
	return sim.runFuncs(sim.InitFuncs)
}

// AfterStep implements Host.
func (sim *Simulation) AfterStep(s *Solver) error {
	return sim.runFuncs(sim.StepFuncs)
}

// AfterSnap implements Host.
func (sim *Simulation) AfterSnap(s *Solver, isnap int) error {
	sim.isnap = isnap
	return sim.runFuncs(sim.SnapFuncs)
}

// AfterSolve implements Host.
func (sim *Simulation) AfterSolve(s *Solver) error {
	return sim.runFuncs(sim.CleanupFuncs)
}

// TotalEvap returns the total evaporation rate [m²/s].
func (sim *Simulation) TotalEvap() float64 {
	var e float64
	for _, v := range sim.Evap {
		e += v
	}
	return e
}

// TotalEvapPerWidth returns the total evaporation rate divided by the
// width of the evaporating cells [m/s], or 0 if no cells are evaporating.
func (sim *Simulation) TotalEvapPerWidth() float64 {
	var e, w float64
	for j, v := range sim.Evap {
		if v > 0 {
			e += v
			w += sim.grid.delx[j]
		}
	}
	if w == 0 {
		return 0
	}
	return e / w
}

// Evaporation removes water above the ground surface at the end of every
// step and records it as evaporation.
func Evaporation() DomainManipulator {
	return func(sim *Simulation) error {
		g := sim.grid
		H := sim.H()
		dt := sim.solver.Dt()
		for j := range H {
			if H[j] > g.ztopc[j] {
				d := H[j] - g.ztopc[j]
				sim.Evap[j] = d * g.delx[j] * sim.poroSurf / dt
				sim.EvapW[j] = d * sim.poroSurf / dt
				sim.CumEvap[j] += sim.Evap[j] * dt
				H[j] = g.ztopc[j]
			} else {
				sim.Evap[j], sim.EvapW[j] = 0, 0
			}
		}
		return nil
	}
}

// ForceRecharge sets the water table to the ground surface at the end of
// every step.
func ForceRecharge() DomainManipulator {
	return func(sim *Simulation) error {
		copy(sim.H(), sim.grid.ztopc)
		return nil
	}
}

// TrackSeries appends the current domain totals to sim.Series.
func TrackSeries() DomainManipulator {
	return func(sim *Simulation) error {
		f := sim.Fields()
		sim.Series.T = append(sim.Series.T, sim.solver.Time())
		sim.Series.Evap = append(sim.Series.Evap, sim.TotalEvap())
		sim.Series.EvapW = append(sim.Series.EvapW, sim.TotalEvapPerWidth())
		sim.Series.MaxAqbot = append(sim.Series.MaxAqbot, maxFloat(f.Aqbot))
		sim.Series.MinAqbot = append(sim.Series.MinAqbot, minFloat(f.Aqbot))
		return nil
	}
}

// StabilityCheck returns ErrDiverged if the state holds values that are
// not finite or if maxGradH is positive and the magnitude of the water
// table gradient exceeds it.
func StabilityCheck(maxGradH float64) DomainManipulator {
	return func(sim *Simulation) error {
		y := sim.solver.State()
		if !allFinite(y) {
			return fmt.Errorf("%w: non-finite state at t=%g s (step %d)",
				ErrDiverged, sim.solver.Time(), sim.solver.Step())
		}
		if maxGradH <= 0 {
			return nil
		}
		if _, g := absRange(sim.Fields().GradH); g > maxGradH {
			return fmt.Errorf("%w: hydraulic gradient %g exceeds %g at t=%g s (step %d)",
				ErrDiverged, g, maxGradH, sim.solver.Time(), sim.solver.Step())
		}
		return nil
	}
}

// WriteProfiles writes the porosity and permeability profiles.
func WriteProfiles() DomainManipulator {
	return func(sim *Simulation) error {
		if sim.Out == nil {
			return nil
		}
		ctx := sim.Context()
		if err := sim.Out.WriteArray(ctx, "poro", sim.poro); err != nil {
			return err
		}
		return sim.Out.WriteArray(ctx, "perm", sim.perm)
	}
}

// DumpFields writes the model fields and evaporation arrays, with the
// snapshot index appended to their names.
func DumpFields() DomainManipulator {
	return func(sim *Simulation) error {
		if sim.Out == nil {
			return nil
		}
		ctx := sim.Context()
		sfx := "_" + strconv.Itoa(sim.isnap)
		f := sim.Fields()
		for _, a := range []struct {
			name string
			v    []float64
		}{
			{"gradH", f.GradH}, {"Hedge", f.Hedge}, {"qH", f.QH}, {"Kint", f.Kint},
			{"Tsurf", f.Tsurf}, {"aqbot", f.Aqbot},
			{"evap", sim.Evap}, {"evapw", sim.EvapW}, {"cumevap", sim.CumEvap},
		} {
			if err := sim.Out.WriteArray(ctx, a.name+sfx, a.v); err != nil {
				return err
			}
		}
		for _, a := range []struct {
			name string
			m    *mat.Dense
		}{
			{"captherm", f.Captherm}, {"gradT", f.GradT}, {"qT", f.QT},
			{"wsat", f.Wsat}, {"isat", f.Isat},
		} {
			if err := WriteMatrix(ctx, sim.Out, a.name+sfx, a.m); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteSeries writes the time series, subsampled to about nmax values.
func WriteSeries(nmax int) DomainManipulator {
	return func(sim *Simulation) error {
		if sim.Out == nil {
			return nil
		}
		ctx := sim.Context()
		for _, a := range []struct {
			name string
			v    []float64
		}{
			{"o_t", sim.Series.T}, {"o_evap", sim.Series.Evap}, {"o_evapw", sim.Series.EvapW},
			{"o_maxaqbot", sim.Series.MaxAqbot}, {"o_minaqbot", sim.Series.MinAqbot},
		} {
			if err := sim.Out.WriteArray(ctx, a.name, Subsample(a.v, nmax)); err != nil {
				return err
			}
		}
		return nil
	}
}

// Log writes a status message at every snapshot.
func Log() DomainManipulator {
	return func(sim *Simulation) error {
		if sim.Log == nil {
			return nil
		}
		g, f, sv := sim.grid, sim.Fields(), sim.solver
		depth := make([]float64, g.nx)
		for j, h := range sim.H() {
			depth[j] = g.ztopc[j] - h
		}
		var interior []float64
		if g.nx > 1 {
			interior = f.GradH[1:g.nx]
		}
		gmin, gmax := absRange(interior)
		_, front := absRange(f.Aqbot)
		wall := time.Since(sim.started)
		perStep := 0.
		if sv.Step() > 0 {
			perStep = wall.Seconds() / float64(sv.Step())
		}
		T := sv.State()[g.nx:]
		sim.Log.WithFields(logrus.Fields{
			"snapshot": sim.isnap,
			"walltime": hms(wall),
			"steps":    sv.Step(),
		}).Infof("model time %g yr; %.3g s/step; water table depth [%.2e, %.2e] m; "+
			"hydraulic gradient [%.2e, %.2e] %%; Kint [%.2e, %.2e] m²/s; "+
			"evaporation %g m²/s (%g m/s); surface temperature [%.2e, %.2e] K; "+
			"temperature [%.2e, %.2e] K; deepest freezing front %g m",
			sv.Time()/sim.c.YearSeconds, perStep,
			minFloat(depth), maxFloat(depth),
			100*gmin, 100*gmax,
			minFloat(f.Kint), maxFloat(f.Kint),
			sim.TotalEvap(), sim.TotalEvapPerWidth(),
			minFloat(f.Tsurf), maxFloat(f.Tsurf),
			minFloat(T), maxFloat(T),
			front)
		return nil
	}
}
