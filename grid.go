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
	"math"
)

// gridTolerance is the relative tolerance used when checking that widths,
// edges and the surface coordinate agree.
const gridTolerance = 1e-9

// GridData holds the raw coordinate arrays that define a grid.
//
// Vertical coordinates are elevations relative to the local ground
// surface, so the surface edge is 0 and deeper edges are negative. The
// vertical arrays may be ordered either from the deepest edge upward
// (the order used by grid files) or from the surface downward; all
// vertical arrays, and the temperature columns of the model state, must
// use the same order. Horizontal arrays are ordered left to right.
type GridData struct {
	Ze, Zc, Delz []float64 // vertical edges (Nz+1), centers (Nz), widths (Nz) [m]
	Xe, Xc, Delx []float64 // horizontal edges (Nx+1), centers (Nx), widths (Nx) [m]

	ZtopE, ZtopC []float64 // surface topography at horizontal edges (Nx+1) and centers (Nx) [m]
}

// Grid is the immutable geometry of a model domain. It is safe for
// concurrent use.
type Grid struct {
	nz, nx       int
	ze, zc, delz []float64
	xe, xc, delx []float64
	ztope, ztopc []float64
	htope        []float64

	ascending bool // whether vertical index 0 is the deepest cell
}

// NewGrid validates d and returns a new grid holding copies of its arrays.
func NewGrid(d GridData) (*Grid, error) {
	nz, nx := len(d.Zc), len(d.Xc)
	if nz < 1 {
		return nil, fmt.Errorf("%w: no vertical cells", ErrInvalidGrid)
	}
	if nx < 1 {
		return nil, fmt.Errorf("%w: no horizontal cells", ErrInvalidGrid)
	}
	for _, a := range []struct {
		name string
		v    []float64
		n    int
	}{
		{"ze", d.Ze, nz + 1}, {"zc", d.Zc, nz}, {"delz", d.Delz, nz},
		{"xe", d.Xe, nx + 1}, {"xc", d.Xc, nx}, {"delx", d.Delx, nx},
		{"ztope", d.ZtopE, nx + 1}, {"ztopc", d.ZtopC, nx},
	} {
		if len(a.v) != a.n {
			return nil, fmt.Errorf("%w: %s has length %d; it should be %d",
				ErrInvalidGrid, a.name, len(a.v), a.n)
		}
		for i, v := range a.v {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s[%d] is %g", ErrInvalidGrid, a.name, i, v)
			}
		}
	}

	g := &Grid{
		nz:    nz,
		nx:    nx,
		ze:    copyFloats(d.Ze),
		zc:    copyFloats(d.Zc),
		delz:  copyFloats(d.Delz),
		xe:    copyFloats(d.Xe),
		xc:    copyFloats(d.Xc),
		delx:  copyFloats(d.Delx),
		ztope: copyFloats(d.ZtopE),
		ztopc: copyFloats(d.ZtopC),
	}
	g.ascending = g.ze[nz] > g.ze[0]

	if err := checkAxis("z", g.ze, g.zc, g.delz, false); err != nil {
		return nil, err
	}
	if err := checkAxis("x", g.xe, g.xc, g.delx, true); err != nil {
		return nil, err
	}
	depth := math.Abs(g.ze[nz] - g.ze[0])
	if s := g.ze[g.topEdge()]; math.Abs(s) > gridTolerance*depth {
		return nil, fmt.Errorf("%w: surface edge is at %g; it should be 0", ErrInvalidGrid, s)
	}
	if g.ze[g.bottomEdge()] >= 0 {
		return nil, fmt.Errorf("%w: bottom edge is at %g; it should be negative",
			ErrInvalidGrid, g.ze[g.bottomEdge()])
	}

	zmin := minFloat(g.ztope)
	g.htope = make([]float64, nx+1)
	for j, z := range g.ztope {
		g.htope[j] = z - zmin
	}
	return g, nil
}

// checkAxis checks that edges are strictly monotonic, that widths match
// the edges and that every center lies between its edges. If increasing
// is true the edges must increase.
func checkAxis(name string, edges, centers, widths []float64, increasing bool) error {
	up := edges[len(edges)-1] > edges[0]
	if increasing && !up {
		return fmt.Errorf("%w: %s edges must increase", ErrInvalidGrid, name)
	}
	span := math.Abs(edges[len(edges)-1] - edges[0])
	for i := range centers {
		lo, hi := edges[i], edges[i+1]
		if !up {
			lo, hi = hi, lo
		}
		if hi <= lo {
			return fmt.Errorf("%w: %s edges are not strictly monotonic at index %d",
				ErrInvalidGrid, name, i)
		}
		if math.Abs((hi-lo)-widths[i]) > gridTolerance*span {
			return fmt.Errorf("%w: del%s[%d]=%g does not match edge spacing %g",
				ErrInvalidGrid, name, i, widths[i], hi-lo)
		}
		if centers[i] < lo || centers[i] > hi {
			return fmt.Errorf("%w: %sc[%d]=%g is outside of [%g, %g]",
				ErrInvalidGrid, name, i, centers[i], lo, hi)
		}
	}
	return nil
}

// Nz returns the number of vertical cells in each column.
func (g *Grid) Nz() int { return g.nz }

// Nx returns the number of horizontal cells.
func (g *Grid) Nx() int { return g.nx }

// Ze returns the vertical edge coordinates.
func (g *Grid) Ze() []float64 { return copyFloats(g.ze) }

// Zc returns the vertical center coordinates.
func (g *Grid) Zc() []float64 { return copyFloats(g.zc) }

// Delz returns the vertical cell widths.
func (g *Grid) Delz() []float64 { return copyFloats(g.delz) }

// Xe returns the horizontal edge coordinates.
func (g *Grid) Xe() []float64 { return copyFloats(g.xe) }

// Xc returns the horizontal center coordinates.
func (g *Grid) Xc() []float64 { return copyFloats(g.xc) }

// Delx returns the horizontal cell widths.
func (g *Grid) Delx() []float64 { return copyFloats(g.delx) }

// ZtopE returns the surface topography at horizontal edges.
func (g *Grid) ZtopE() []float64 { return copyFloats(g.ztope) }

// ZtopC returns the surface topography at horizontal centers.
func (g *Grid) ZtopC() []float64 { return copyFloats(g.ztopc) }

// HtopE returns the height of the surface at each horizontal edge above
// the lowest edge.
func (g *Grid) HtopE() []float64 { return copyFloats(g.htope) }

// Xa returns the left end of the transect.
func (g *Grid) Xa() float64 { return g.xe[0] }

// Xb returns the right end of the transect.
func (g *Grid) Xb() float64 { return g.xe[g.nx] }

// Bottom returns the coordinate of the deepest vertical edge (a negative
// number).
func (g *Grid) Bottom() float64 { return g.ze[g.bottomEdge()] }

// Depth returns the thickness of each column.
func (g *Grid) Depth() float64 { return -g.Bottom() }

// Ascending reports whether vertical index 0 is the deepest cell.
func (g *Grid) Ascending() bool { return g.ascending }

// topCell, bottomEdge and topEdge give vertical indices that depend on the
// storage order.
func (g *Grid) topCell() int {
	if g.ascending {
		return g.nz - 1
	}
	return 0
}

func (g *Grid) bottomEdge() int {
	if g.ascending {
		return 0
	}
	return g.nz
}

func (g *Grid) topEdge() int {
	if g.ascending {
		return g.nz
	}
	return 0
}

// cellFromTop returns the index of the k'th cell below the surface.
func (g *Grid) cellFromTop(k int) int {
	if g.ascending {
		return g.nz - 1 - k
	}
	return k
}

// lowerEdge and upperEdge return the indices of the deeper and shallower
// edges of cell i.
func (g *Grid) lowerEdge(i int) int {
	if g.ascending {
		return i
	}
	return i + 1
}

func (g *Grid) upperEdge(i int) int {
	if g.ascending {
		return i + 1
	}
	return i
}
