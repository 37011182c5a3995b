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
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Params holds the material and forcing parameters of a simulation.
type Params struct {
	Poro0   float64 // surface porosity [-]
	PoroGam float64 // porosity e-folding depth [m]
	Perm0   float64 // surface permeability [m²]
	PermGam float64 // permeability e-folding depth [m]

	// KTr is the bulk thermal conductivity when using the default
	// constant conductivity model and the rock conductivity when using
	// HarmonicConductivity [W/m/K].
	KTr float64

	FTgeo   float64        // geothermal heat flux [W/m²]
	Surface SurfaceForcing // surface temperature history
}

// FluxFunc returns a water flux [m²/s] at time t [s].
type FluxFunc func(t float64) float64

// Fields holds the intermediate results of the most recent derivative
// evaluation. One-dimensional fields have one value per horizontal edge.
// Two-dimensional fields have one row per horizontal edge and one column
// per vertical edge (GradT, QT) or cell (Wsat, Isat, Captherm).
// Fields must be treated as read-only outside of the model.
type Fields struct {
	Tsurf []float64 // surface temperature [K]
	Aqbot []float64 // freezing front elevation relative to the surface [m]
	Kint  []float64 // vertically integrated hydraulic conductivity [m²/s]
	QH    []float64 // horizontal water flux [m²/s]
	GradH []float64 // water table gradient [-]
	Hedge []float64 // water table elevation at the edge [m]

	GradT *mat.Dense // vertical temperature gradient [K/m]
	QT    *mat.Dense // vertical heat flux [W/m²]

	Wsat     *mat.Dense // liquid water saturation fraction [-]
	Isat     *mat.Dense // ice saturation fraction [-]
	Captherm *mat.Dense // apparent heat capacity [J/m³/K]
}

func newFields(nx, nz int) *Fields {
	return &Fields{
		Tsurf:    make([]float64, nx+1),
		Aqbot:    make([]float64, nx+1),
		Kint:     make([]float64, nx+1),
		QH:       make([]float64, nx+1),
		GradH:    make([]float64, nx+1),
		Hedge:    make([]float64, nx+1),
		GradT:    mat.NewDense(nx+1, nz+1, nil),
		QT:       mat.NewDense(nx+1, nz+1, nil),
		Wsat:     mat.NewDense(nx+1, nz, nil),
		Isat:     mat.NewDense(nx+1, nz, nil),
		Captherm: mat.NewDense(nx+1, nz, nil),
	}
}

// Model evaluates the time derivative of the coupled water table and
// temperature system. A Model may not be used by more than one goroutine
// at a time.
type Model struct {
	grid   *Grid
	c      Constants
	p      Params
	layout StateLayout

	cond        ConductivityModel
	left, right FluxFunc
	workers     int

	poro, perm []float64 // static profiles, one value per vertical cell
	kcell      []float64 // thermal conductivity of each vertical cell
	kedge      []float64 // thermal conductivity at each vertical edge
	poroSurf   float64

	f *Fields
}

// ModelOption configures optional Model behavior.
type ModelOption func(*Model)

// WithWorkers sets the number of goroutines used for the per-column
// calculations. The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) ModelOption {
	return func(m *Model) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithConductivity sets the thermal conductivity model. The default is
// ConstantConductivity(p.KTr).
func WithConductivity(c ConductivityModel) ModelOption {
	return func(m *Model) { m.cond = c }
}

// WithBoundaryFlux sets water fluxes entering the domain through its left
// and right ends. Either function may be nil, which means no flux.
func WithBoundaryFlux(left, right FluxFunc) ModelOption {
	return func(m *Model) {
		m.left, m.right = left, right
	}
}

// NewModel creates a new model on grid g.
func NewModel(g *Grid, c Constants, p Params, opts ...ModelOption) (*Model, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	m := &Model{
		grid:    g,
		c:       c,
		p:       p,
		layout:  StateLayout{Nx: g.nx, Nz: g.nz},
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(m)
	}
	if m.cond == nil {
		m.cond = ConstantConductivity(p.KTr)
	}

	nz := g.nz
	m.poro = make([]float64, nz)
	m.perm = make([]float64, nz)
	m.kcell = make([]float64, nz)
	for i, z := range g.zc {
		m.poro[i] = Porosity(-z, p.Poro0, p.PoroGam)
		m.perm[i] = Permeability(-z, p.Perm0, p.PermGam)
		m.kcell[i] = m.cond.Conductivity(m.poro[i])
		if !(m.kcell[i] > 0) {
			return nil, fmt.Errorf("%w: thermal conductivity of cell %d is %g",
				ErrInvalidSettings, i, m.kcell[i])
		}
	}
	m.poroSurf = Porosity(0, p.Poro0, p.PoroGam)

	m.kedge = make([]float64, nz+1)
	for e := 1; e < nz; e++ {
		m.kedge[e] = harmonicMean(m.kcell[e-1], m.kcell[e])
	}
	m.kedge[0] = m.kcell[0]
	m.kedge[nz] = m.kcell[nz-1]

	m.f = newFields(g.nx, nz)
	return m, nil
}

func (p Params) validate() error {
	switch {
	case !(p.Poro0 > 0 && p.Poro0 < 1):
		return fmt.Errorf("%w: surface porosity %g must be in (0, 1)", ErrInvalidSettings, p.Poro0)
	case !(p.PoroGam > 0):
		return fmt.Errorf("%w: porosity decay length %g must be positive", ErrInvalidSettings, p.PoroGam)
	case !(p.Perm0 >= 0):
		return fmt.Errorf("%w: surface permeability %g must not be negative", ErrInvalidSettings, p.Perm0)
	case !(p.PermGam > 0):
		return fmt.Errorf("%w: permeability decay length %g must be positive", ErrInvalidSettings, p.PermGam)
	case !(p.KTr > 0):
		return fmt.Errorf("%w: thermal conductivity %g must be positive", ErrInvalidSettings, p.KTr)
	case !(p.Surface.TimeConstant > 0):
		return fmt.Errorf("%w: surface temperature time constant %g must be positive",
			ErrInvalidSettings, p.Surface.TimeConstant)
	}
	return nil
}

// Grid returns the model grid.
func (m *Model) Grid() *Grid { return m.grid }

// Layout returns the layout of state and derivative buffers.
func (m *Model) Layout() StateLayout { return m.layout }

// Constants returns the physical constants.
func (m *Model) Constants() Constants { return m.c }

// Params returns the model parameters.
func (m *Model) Params() Params { return m.p }

// Porosity returns the porosity of each vertical cell.
func (m *Model) Porosity() []float64 { return copyFloats(m.poro) }

// Permeability returns the permeability of each vertical cell [m²].
func (m *Model) Permeability() []float64 { return copyFloats(m.perm) }

// SurfacePorosity returns the porosity at the ground surface.
func (m *Model) SurfacePorosity() float64 { return m.poroSurf }

// Fields returns the intermediate results of the most recent call to
// Derivative. The returned value is overwritten by the next call.
func (m *Model) Fields() *Fields { return m.f }

// InitialState returns a state buffer holding a water table hdep0 meters
// below the surface of every cell and steady geothermal temperature
// profiles below the initial surface temperature.
func (m *Model) InitialState(hdep0 float64) []float64 {
	g := m.grid
	y := make([]float64, m.layout.Len())
	H := m.layout.H(y)
	for j := range H {
		H[j] = g.ztopc[j] - hdep0
	}
	for j := 0; j <= g.nx; j++ {
		T := m.layout.T(y, j)
		ts := m.c.SurfaceTemperature(0, g.htope[j], m.p.Surface)
		top := g.topCell()
		T[top] = ts - m.p.FTgeo*g.zc[top]/m.kcell[top]
		above := top
		for k := 1; k < g.nz; k++ {
			i := g.cellFromTop(k)
			e := g.upperEdge(i)
			T[i] = T[above] + m.p.FTgeo*(g.zc[above]-g.zc[i])/m.kedge[e]
			above = i
		}
	}
	return y
}

// Derivative calculates the time derivative of state at time t [s] and
// stores it in out. Both buffers must follow Layout(); Derivative panics
// if they don't.
func (m *Model) Derivative(state []float64, t float64, out []float64) {
	if err := m.layout.Check(state); err != nil {
		panic(err)
	}
	if err := m.layout.Check(out); err != nil {
		panic(err)
	}
	g, f := m.grid, m.f
	nx := g.nx
	H := m.layout.H(state)

	// Water table gradient and edge values. The ends of the transect
	// are no-flux boundaries.
	f.GradH[0] = 0
	f.Hedge[0] = H[0]
	for j := 1; j < nx; j++ {
		f.GradH[j] = (H[j] - H[j-1]) / (g.xc[j] - g.xc[j-1])
		f.Hedge[j] = H[j-1] + f.GradH[j]*(g.xe[j]-g.xc[j-1])
		if f.Hedge[j] > g.ztope[j] {
			f.Hedge[j] = g.ztope[j]
		}
	}
	f.GradH[nx] = 0
	f.Hedge[nx] = H[nx-1]

	// Concurrently run the column physics on all of the edge columns.
	nprocs := m.workers
	if nprocs > nx+1 {
		nprocs = nx + 1
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for j := pp; j <= nx; j += nprocs {
				m.column(j, t, m.layout.T(state, j), m.layout.T(out, j))
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	dHdt := m.layout.H(out)
	var qa, qb float64
	if m.left != nil {
		qa = m.left(t)
	}
	if m.right != nil {
		qb = m.right(t)
	}
	for j := 0; j < nx; j++ {
		in, outflow := f.QH[j], f.QH[j+1]
		if j == 0 {
			in += qa
		}
		if j == nx-1 {
			outflow -= qb
		}
		poro := m.poro[LocateCell(g.ze, H[j]-g.ztopc[j])]
		dHdt[j] = (in - outflow) / (g.delx[j] * poro)
	}
}
