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

// LinearLocate returns the x at which the line through (xa, ya) and
// (xb, yb) takes the value y. ya and yb must differ.
func LinearLocate(xa, ya, xb, yb, y float64) float64 {
	return (y-ya)*(xa-xb)/(ya-yb) + xa
}

// LocateCell returns the index of the cell bounded by edges that contains
// pt. edges must be strictly monotonic, either increasing or decreasing,
// and hold at least two values. Points beyond either end are assigned to
// the nearest end cell. A point on an interior edge belongs to the cell
// on its lower side, whichever way the edges are ordered.
func LocateCell(edges []float64, pt float64) int {
	n := len(edges)
	if edges[n-1] > edges[0] {
		if pt < edges[0] {
			return 0
		}
		for i := 1; i < n; i++ {
			if pt <= edges[i] {
				return i - 1
			}
		}
		return n - 2
	}
	if pt > edges[0] {
		return 0
	}
	for i := 1; i < n; i++ {
		if pt > edges[i] {
			return i - 1
		}
	}
	return n - 2
}

// FreezingFront returns the elevation (relative to the surface) at which
// the temperature column T first drops to the freezing temperature tf when
// scanning down from the surface, where the surface temperature is tsurf.
// It returns 0 if the surface itself is frozen and Bottom() if the whole
// column is thawed.
func (g *Grid) FreezingFront(T []float64, tsurf, tf float64) float64 {
	if tsurf <= tf {
		return 0
	}
	top := g.topCell()
	if T[top] <= tf {
		return LinearLocate(g.zc[top], T[top], 0, tsurf, tf)
	}
	above := top
	for k := 1; k < g.nz; k++ {
		i := g.cellFromTop(k)
		if T[i] <= tf {
			return LinearLocate(g.zc[i], T[i], g.zc[above], T[above], tf)
		}
		above = i
	}
	return g.Bottom()
}
