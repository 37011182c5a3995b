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
	"math"
	"testing"
)

func TestLinearLocate(t *testing.T) {
	if x := LinearLocate(0, 10, 2, 20, 15); x != 1 {
		t.Errorf("have %g; want 1", x)
	}
	if x := LinearLocate(-1.5, 270, -0.5, 280, 273); absDifferent(x, -1.2, 1e-12) {
		t.Errorf("have %g; want -1.2", x)
	}
}

func TestLocateCell(t *testing.T) {
	asc := []float64{-3, -2, -1, 0}
	desc := []float64{0, -1, -2, -3}
	for _, test := range []struct {
		pt        float64
		asc, desc int
	}{
		{pt: -2.5, asc: 0, desc: 2},
		{pt: -1.5, asc: 1, desc: 1},
		{pt: -0.5, asc: 2, desc: 0},
		{pt: 5, asc: 2, desc: 0},
		{pt: -10, asc: 0, desc: 2},
		{pt: -2, asc: 0, desc: 2},
		{pt: -1, asc: 1, desc: 1},
		{pt: 0, asc: 2, desc: 0},
		{pt: -3, asc: 0, desc: 2},
	} {
		if i := LocateCell(asc, test.pt); i != test.asc {
			t.Errorf("ascending %g: have %d; want %d", test.pt, i, test.asc)
		}
		if i := LocateCell(desc, test.pt); i != test.desc {
			t.Errorf("descending %g: have %d; want %d", test.pt, i, test.desc)
		}
	}

	// Every located cell contains the point or is the nearest end cell.
	for pt := -3.4; pt < 0.4; pt += 0.013 {
		for _, edges := range [][]float64{asc, desc} {
			i := LocateCell(edges, pt)
			lo, hi := math.Min(edges[i], edges[i+1]), math.Max(edges[i], edges[i+1])
			if pt >= -3 && pt <= 0 && (pt < lo || pt > hi) {
				t.Errorf("%g located in cell [%g, %g]", pt, lo, hi)
			}
		}
	}
}

func TestFreezingFront(t *testing.T) {
	for _, descending := range []bool{true, false} {
		g := testGrid(t, 1, 3, 1, 1, FlatTopography(0), descending)
		T := []float64{280, 270, 260}
		if !descending {
			reverse(T)
		}

		if z := g.FreezingFront(T, 290, 273); absDifferent(z, -1.2, 1e-12) {
			t.Errorf("descending=%v: have %g; want -1.2", descending, z)
		}
		if z := g.FreezingFront(T, 273, 273); z != 0 {
			t.Errorf("descending=%v: frozen surface: have %g; want 0", descending, z)
		}
		thawed := []float64{280, 280, 280}
		if z := g.FreezingFront(thawed, 290, 273); z != -3 {
			t.Errorf("descending=%v: thawed column: have %g; want -3", descending, z)
		}

		// A frozen top cell is interpolated against the surface.
		cold := []float64{263, 250, 240}
		if !descending {
			reverse(cold)
		}
		if z := g.FreezingFront(cold, 283, 273); absDifferent(z, -0.25, 1e-12) {
			t.Errorf("descending=%v: frozen top cell: have %g; want -0.25", descending, z)
		}

		// A warmer surface never raises the front.
		last := 0.0
		for ts := 273.5; ts < 300; ts += 0.5 {
			z := g.FreezingFront(T, ts, 273)
			if z > last+1e-12 {
				t.Errorf("descending=%v: front rose from %g to %g at tsurf=%g", descending, last, z, ts)
			}
			if z < g.Bottom() || z > 0 {
				t.Errorf("descending=%v: front %g is outside of the column", descending, z)
			}
			last = z
		}
	}
}
