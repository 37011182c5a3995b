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
	"errors"
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance {
		return true
	}
	return false
}

// testGridData returns a grid with nx cells of width dx and columns of nz
// cells of thickness dz. If descending is true the vertical arrays start
// at the surface.
func testGridData(nx, nz int, dx, dz float64, topo Topography, descending bool) GridData {
	var d GridData
	d.Xe = make([]float64, nx+1)
	d.ZtopE = make([]float64, nx+1)
	for j := range d.Xe {
		d.Xe[j] = dx * float64(j)
		d.ZtopE[j] = topo(d.Xe[j])
	}
	for j := 0; j < nx; j++ {
		d.Xc = append(d.Xc, d.Xe[j]+dx/2)
		d.Delx = append(d.Delx, dx)
		d.ZtopC = append(d.ZtopC, topo(d.Xe[j]+dx/2))
	}
	d.Ze = make([]float64, nz+1)
	for i := range d.Ze {
		d.Ze[i] = -dz * float64(nz-i)
	}
	for i := 0; i < nz; i++ {
		d.Zc = append(d.Zc, d.Ze[i]+dz/2)
		d.Delz = append(d.Delz, dz)
	}
	if descending {
		reverse(d.Ze)
		reverse(d.Zc)
		reverse(d.Delz)
	}
	return d
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func testGrid(t *testing.T, nx, nz int, dx, dz float64, topo Topography, descending bool) *Grid {
	g, err := NewGrid(testGridData(nx, nz, dx, dz, topo, descending))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func testParams() Params {
	return Params{
		Poro0:   0.2,
		PoroGam: 2500,
		Perm0:   1e-12,
		PermGam: 1000,
		KTr:     3,
		FTgeo:   0.04,
		Surface: SurfaceForcing{
			Initial:      285,
			Final:        285,
			TimeConstant: 1,
		},
	}
}

func testModel(t *testing.T, g *Grid, p Params, opts ...ModelOption) *Model {
	m, err := NewModel(g, DefaultConstants(), p, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestFlatWaterTable(t *testing.T) {
	g := testGrid(t, 2, 3, 1, 1, FlatTopography(10), true)
	m := testModel(t, g, testParams())
	l := m.Layout()
	y := make([]float64, l.Len())
	copy(l.H(y), []float64{5, 5})
	for j := 0; j <= 2; j++ {
		copy(l.T(y, j), []float64{280, 270, 260})
	}
	dy := make([]float64, l.Len())
	m.Derivative(y, 0, dy)

	f := m.Fields()
	for j := 0; j <= 2; j++ {
		if f.GradH[j] != 0 {
			t.Errorf("gradH[%d] = %g; want 0", j, f.GradH[j])
		}
		if f.Hedge[j] != 5 {
			t.Errorf("Hedge[%d] = %g; want 5", j, f.Hedge[j])
		}
		if f.QH[j] != 0 {
			t.Errorf("qH[%d] = %g; want 0", j, f.QH[j])
		}
	}
	for j, v := range l.H(dy) {
		if v != 0 {
			t.Errorf("dH/dt[%d] = %g; want 0", j, v)
		}
	}
}

// slopedState returns a state with a water table that is deeper towards
// the right and temperature columns that freeze at depth.
func slopedState(m *Model, descending bool) []float64 {
	g := m.Grid()
	l := m.Layout()
	y := make([]float64, l.Len())
	ztopc := g.ZtopC()
	for j := range l.H(y) {
		l.H(y)[j] = ztopc[j] - 1 - 0.7*float64(j*j)
	}
	nz := g.Nz()
	for j := 0; j <= g.Nx(); j++ {
		T := l.T(y, j)
		for i := range T {
			k := i // cells from the bottom
			if descending {
				k = nz - 1 - i
			}
			T[i] = 255 + 25*float64(k)/float64(nz-1) + 0.5*float64(j)
		}
	}
	return y
}

func TestWaterConservation(t *testing.T) {
	topo := func(x float64) float64 { return 100 - 0.01*x }
	g := testGrid(t, 5, 20, 100, 1, topo, false)

	for _, test := range []struct {
		name        string
		left, right float64
	}{
		{name: "no flux"},
		{name: "boundary flux", left: 1e-3, right: 2e-3},
	} {
		t.Run(test.name, func(t *testing.T) {
			left, right := test.left, test.right
			m := testModel(t, g, testParams(), WithBoundaryFlux(
				func(float64) float64 { return left },
				func(float64) float64 { return right },
			))
			y := slopedState(m, false)
			dy := make([]float64, len(y))
			m.Derivative(y, 0, dy)

			l := m.Layout()
			H, dH := l.H(y), l.H(dy)
			ze, ztopc, delx, poro := g.Ze(), g.ZtopC(), g.Delx(), m.Porosity()
			var sum, abs float64
			for j := range H {
				v := dH[j] * delx[j] * poro[LocateCell(ze, H[j]-ztopc[j])]
				sum += v
				abs += math.Abs(v)
			}
			if abs == 0 {
				t.Fatal("no water table change")
			}
			if absDifferent(sum, left+right, 1e-12*abs+1e-15) {
				t.Errorf("net water change %g; want %g", sum, left+right)
			}
		})
	}
}

func TestDerivativeOrientation(t *testing.T) {
	topo := func(x float64) float64 { return 50 - 0.02*x }
	asc := testModel(t, testGrid(t, 4, 10, 100, 2, topo, false), testParams())
	desc := testModel(t, testGrid(t, 4, 10, 100, 2, topo, true), testParams())

	for _, test := range []struct {
		name   string
		onEdge bool
	}{
		{name: "sloped water table"},
		{name: "water table on cell edges", onEdge: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			ya, yd := slopedState(asc, false), slopedState(desc, true)
			if test.onEdge {
				ztopc := asc.Grid().ZtopC()
				for j := range ztopc {
					asc.Layout().H(ya)[j] = ztopc[j] - 2
					desc.Layout().H(yd)[j] = ztopc[j] - 2
				}
			}
			da, dd := make([]float64, len(ya)), make([]float64, len(yd))
			asc.Derivative(ya, 3e7, da)
			desc.Derivative(yd, 3e7, dd)

			l := asc.Layout()
			for j := range l.H(da) {
				if different(l.H(da)[j], l.H(dd)[j], 1e-10) {
					t.Errorf("dH/dt[%d]: ascending %g, descending %g", j, l.H(da)[j], l.H(dd)[j])
				}
			}
			for j := 0; j <= l.Nx; j++ {
				ta, td := l.T(da, j), l.T(dd, j)
				for i := range ta {
					if absDifferent(ta[i], td[l.Nz-1-i], 1e-12*math.Abs(ta[i])+1e-20) {
						t.Errorf("dT/dt[%d][%d]: ascending %g, descending %g", j, i, ta[i], td[l.Nz-1-i])
					}
				}
				fa, fd := asc.Fields(), desc.Fields()
				if absDifferent(fa.Aqbot[j], fd.Aqbot[j], 1e-12) {
					t.Errorf("aqbot[%d]: ascending %g, descending %g", j, fa.Aqbot[j], fd.Aqbot[j])
				}
				if different(fa.Kint[j], fd.Kint[j], 1e-10) {
					t.Errorf("Kint[%d]: ascending %g, descending %g", j, fa.Kint[j], fd.Kint[j])
				}
			}
		})
	}
}

func TestDerivativeWorkers(t *testing.T) {
	topo := func(x float64) float64 { return 50 - 0.02*x }
	g := testGrid(t, 7, 8, 100, 2, topo, false)
	m1 := testModel(t, g, testParams(), WithWorkers(1))
	m3 := testModel(t, g, testParams(), WithWorkers(3))
	y := slopedState(m1, false)
	d1, d3 := make([]float64, len(y)), make([]float64, len(y))
	m1.Derivative(y, 0, d1)
	m3.Derivative(y, 0, d3)
	for i := range d1 {
		if d1[i] != d3[i] {
			t.Errorf("element %d: 1 worker %g, 3 workers %g", i, d1[i], d3[i])
		}
	}
}

func TestInitialState(t *testing.T) {
	topo := func(x float64) float64 { return 10 + 0.01*x }
	for _, descending := range []bool{false, true} {
		g := testGrid(t, 3, 6, 100, 1.5, topo, descending)
		p := testParams()
		p.Surface = SurfaceForcing{Initial: 250, Final: 250, TimeConstant: 1, LapseRate: 0.005}
		m := testModel(t, g, p)
		y := m.InitialState(2)
		l := m.Layout()

		ztopc, htope, zc := g.ZtopC(), g.HtopE(), g.Zc()
		for j, h := range l.H(y) {
			if absDifferent(h, ztopc[j]-2, 1e-12) {
				t.Errorf("H[%d] = %g; want %g", j, h, ztopc[j]-2)
			}
		}
		c := DefaultConstants()
		for j := 0; j <= g.Nx(); j++ {
			ts := c.SurfaceTemperature(0, htope[j], p.Surface)
			for i, T := range l.T(y, j) {
				want := ts - p.FTgeo*zc[i]/p.KTr
				if absDifferent(T, want, 1e-10) {
					t.Errorf("descending=%v: T[%d][%d] = %g; want %g", descending, j, i, T, want)
				}
			}
		}

		// The initial temperature profile is in equilibrium with the
		// geothermal flux and a constant surface temperature.
		dy := make([]float64, len(y))
		m.Derivative(y, 0, dy)
		for j := 0; j <= g.Nx(); j++ {
			for i, v := range l.T(dy, j) {
				if absDifferent(v, 0, 1e-15) {
					t.Errorf("descending=%v: dT/dt[%d][%d] = %g; want 0", descending, j, i, v)
				}
			}
		}
	}
}

func TestIntegratedConductivity(t *testing.T) {
	g := testGrid(t, 1, 4, 1, 1, FlatTopography(0), false)
	m := testModel(t, g, testParams())
	c := DefaultConstants()
	T := []float64{275, 280, 285, 290}
	perm := m.Permeability()
	K := func(i int) float64 { return c.HydraulicConductivity(perm[i], T[i]) }

	for _, test := range []struct {
		name         string
		aqbot, zedge float64
		want         float64
	}{
		{name: "front above water table", aqbot: -1, zedge: -2, want: 0},
		{name: "front at water table", aqbot: -2, zedge: -2, want: 0},
		{name: "same cell", aqbot: -3.5, zedge: -3.2, want: 0.3 * K(0)},
		{name: "adjacent cells", aqbot: -3.5, zedge: -2.25, want: 0.5*K(0) + 0.75*K(1)},
		{name: "many cells", aqbot: -3.5, zedge: -0.5, want: 0.5*K(0) + K(1) + K(2) + 0.5*K(3)},
		{name: "whole column", aqbot: -4, zedge: 0, want: K(0) + K(1) + K(2) + K(3)},
	} {
		t.Run(test.name, func(t *testing.T) {
			have := m.IntegratedConductivity(test.aqbot, test.zedge, T)
			if test.want == 0 {
				if have != 0 {
					t.Errorf("have %g; want 0", have)
				}
				return
			}
			if !(have > 0) || different(have, test.want, 1e-12) {
				t.Errorf("have %g; want %g", have, test.want)
			}
		})
	}
}

func TestSaturation(t *testing.T) {
	g := testGrid(t, 1, 3, 1, 1, FlatTopography(0), true)
	m := testModel(t, g, testParams())
	T := []float64{280, 270, 260}
	aqbot := g.FreezingFront(T, 290, 273)
	if absDifferent(aqbot, -1.2, 1e-12) {
		t.Fatalf("front at %g; want -1.2", aqbot)
	}
	wsat, isat := make([]float64, 3), make([]float64, 3)

	t.Run("saturated to surface", func(t *testing.T) {
		m.Saturation(T, aqbot, 0, wsat, isat)
		wantW, wantI := []float64{1, 0.2, 0}, []float64{0, 0.8, 1}
		for i := range T {
			if absDifferent(wsat[i], wantW[i], 1e-12) || absDifferent(isat[i], wantI[i], 1e-12) {
				t.Errorf("cell %d: wsat=%g, isat=%g; want %g, %g", i, wsat[i], isat[i], wantW[i], wantI[i])
			}
		}
	})
	t.Run("dry top cell", func(t *testing.T) {
		m.Saturation(T, aqbot, -1, wsat, isat)
		if wsat[0] != 0 || isat[0] != 0 {
			t.Errorf("top cell: wsat=%g, isat=%g; want 0, 0", wsat[0], isat[0])
		}
		if absDifferent(isat[1], 0.8, 1e-12) {
			t.Errorf("front cell: isat=%g; want 0.8", isat[1])
		}
	})
}

func TestDerivativeLayoutPanic(t *testing.T) {
	g := testGrid(t, 2, 3, 1, 1, FlatTopography(10), true)
	m := testModel(t, g, testParams())
	defer func() {
		if recover() == nil {
			t.Error("no panic for a short buffer")
		}
	}()
	m.Derivative(make([]float64, 3), 0, make([]float64, m.Layout().Len()))
}

func TestNewModelInvalidParams(t *testing.T) {
	g := testGrid(t, 2, 3, 1, 1, FlatTopography(10), true)
	p := testParams()
	p.Poro0 = 0
	if _, err := NewModel(g, DefaultConstants(), p); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("err = %v; want ErrInvalidSettings", err)
	}
}
