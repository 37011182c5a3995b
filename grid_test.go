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
	"testing"
)

func TestNewGrid(t *testing.T) {
	topo := func(x float64) float64 { return 5 + 0.1*x }
	for _, descending := range []bool{false, true} {
		g := testGrid(t, 3, 4, 10, 2.5, topo, descending)
		if g.Nx() != 3 || g.Nz() != 4 {
			t.Errorf("size %dx%d; want 3x4", g.Nx(), g.Nz())
		}
		if g.Ascending() == descending {
			t.Errorf("descending=%v: Ascending() = %v", descending, g.Ascending())
		}
		if g.Bottom() != -10 || g.Depth() != 10 {
			t.Errorf("bottom %g, depth %g; want -10, 10", g.Bottom(), g.Depth())
		}
		if g.Xa() != 0 || g.Xb() != 30 {
			t.Errorf("transect [%g, %g]; want [0, 30]", g.Xa(), g.Xb())
		}
		want := []float64{0, 1, 2, 3}
		for j, h := range g.HtopE() {
			if absDifferent(h, want[j], 1e-12) {
				t.Errorf("htope[%d] = %g; want %g", j, h, want[j])
			}
		}

		// Accessors return copies.
		ze := g.Ze()
		ze[0] = 100
		if g.Ze()[0] == 100 {
			t.Error("Ze shares memory with the grid")
		}
	}
}

func TestNewGridCopiesInput(t *testing.T) {
	d := testGridData(2, 2, 1, 1, FlatTopography(0), false)
	g, err := NewGrid(d)
	if err != nil {
		t.Fatal(err)
	}
	d.Xc[0] = 99
	if g.Xc()[0] == 99 {
		t.Error("grid shares memory with its input")
	}
}

func TestNewGridInvalid(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(d *GridData)
	}{
		{name: "no vertical cells", modify: func(d *GridData) { d.Zc = nil }},
		{name: "no horizontal cells", modify: func(d *GridData) { d.Xc = nil }},
		{name: "short ze", modify: func(d *GridData) { d.Ze = d.Ze[1:] }},
		{name: "short ztopc", modify: func(d *GridData) { d.ZtopC = d.ZtopC[1:] }},
		{name: "NaN", modify: func(d *GridData) { d.Xe[1] = 0 / zero() }},
		{name: "width mismatch", modify: func(d *GridData) { d.Delz[1] = 2 }},
		{name: "center outside", modify: func(d *GridData) { d.Xc[1] = 5 }},
		{name: "not monotonic", modify: func(d *GridData) { d.Ze[1], d.Ze[2] = d.Ze[2], d.Ze[1] }},
		{name: "decreasing x", modify: func(d *GridData) {
			reverse(d.Xe)
			reverse(d.Xc)
		}},
		{name: "surface not zero", modify: func(d *GridData) {
			for i := range d.Ze {
				d.Ze[i] += 1
			}
			for i := range d.Zc {
				d.Zc[i] += 1
			}
		}},
		{name: "bottom above surface", modify: func(d *GridData) {
			for i := range d.Ze {
				d.Ze[i] = -d.Ze[i]
			}
			for i := range d.Zc {
				d.Zc[i] = -d.Zc[i]
			}
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			d := testGridData(3, 3, 1, 1, FlatTopography(0), false)
			test.modify(&d)
			if _, err := NewGrid(d); !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("err = %v; want ErrInvalidGrid", err)
			}
		})
	}
}

func zero() float64 { return 0 }

func TestStateLayout(t *testing.T) {
	l := StateLayout{Nx: 2, Nz: 3}
	if l.Len() != 11 {
		t.Fatalf("length %d; want 11", l.Len())
	}
	buf := make([]float64, l.Len())
	for i := range buf {
		buf[i] = float64(i)
	}
	if h := l.H(buf); len(h) != 2 || h[1] != 1 {
		t.Errorf("H = %v", h)
	}
	if c := l.T(buf, 1); len(c) != 3 || c[0] != 5 || c[2] != 7 {
		t.Errorf("T(1) = %v", c)
	}
	cols := l.Columns(buf)
	if len(cols) != 3 || cols[2][2] != 10 {
		t.Errorf("columns = %v", cols)
	}
	cols[0][0] = -1
	if buf[2] != -1 {
		t.Error("columns do not share memory with the buffer")
	}
	if h := l.H(buf); cap(h) != 2 {
		t.Errorf("H capacity %d; want 2", cap(h))
	}
	if err := l.Check(buf[1:]); !errors.Is(err, ErrLayout) {
		t.Errorf("err = %v; want ErrLayout", err)
	}
	if err := l.Check(buf); err != nil {
		t.Error(err)
	}
}
