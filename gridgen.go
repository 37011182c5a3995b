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
	"sort"

	"gonum.org/v1/gonum/interp"
)

// GridSpec specifies a grid to be created by GenerateGrid.
type GridSpec struct {
	// Nx0 is the number of evenly spaced horizontal edges to start from.
	Nx0 int

	// Xa and Xb are the ends of the transect [m].
	Xa, Xb float64

	// Refine holds the refinement thresholds for elevation change,
	// slope and curvature. Larger values give more points.
	Refine [3]float64

	// ZRange is the elevation scale used by the elevation change
	// criterion [m]. If zero, Zdepth is used.
	ZRange float64

	// Smooth limits the ratio of neighboring horizontal cell widths to 2.
	Smooth bool

	// MaxEdges limits the number of horizontal edges. If zero,
	// 1,000,000 is used.
	MaxEdges int

	Zdepth float64 // column thickness [m]
	Delz0  float64 // thickness of the surface cell [m]
	Fdelz  float64 // growth factor of cell thickness with depth
}

// DefaultGridSpec returns settings giving a 2500 km transect and 2 km
// deep columns.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		Nx0:    100,
		Xa:     -2e6,
		Xb:     5e5,
		Refine: [3]float64{12 * 1e-4, 12 * 2e-3, 12 * 1e2},
		Smooth: true,
		Zdepth: 2e3,
		Delz0:  0.3,
		Fdelz:  1.01,
	}
}

// Topography returns the surface elevation [m] at horizontal position x.
type Topography func(x float64) float64

// FlatTopography returns a Topography with constant elevation z.
func FlatTopography(z float64) Topography {
	return func(float64) float64 { return z }
}

// LinearTopography returns a Topography that interpolates linearly between
// the points (xs[i], zs[i]) and extrapolates linearly beyond them.
func LinearTopography(xs, zs []float64) (Topography, error) {
	if len(xs) != len(zs) || len(xs) < 2 {
		return nil, fmt.Errorf("boustherm: topography needs at least two points and equal lengths, got %d and %d",
			len(xs), len(zs))
	}
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	x := make([]float64, len(xs))
	z := make([]float64, len(xs))
	for i, k := range idx {
		x[i], z[i] = xs[k], zs[k]
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(x, z); err != nil {
		return nil, fmt.Errorf("boustherm: fitting topography: %v", err)
	}
	n := len(x)
	s0 := (z[1] - z[0]) / (x[1] - x[0])
	s1 := (z[n-1] - z[n-2]) / (x[n-1] - x[n-2])
	return func(xi float64) float64 {
		switch {
		case xi < x[0]:
			return z[0] + s0*(xi-x[0])
		case xi > x[n-1]:
			return z[n-1] + s1*(xi-x[n-1])
		}
		return pl.Predict(xi)
	}, nil
}

// GenerateGrid creates a grid with horizontal edges refined where the
// topography f changes quickly and vertical cells that grow
// geometrically with depth. Vertical arrays are ordered from the deepest
// cell upward.
func GenerateGrid(s GridSpec, f Topography) (GridData, error) {
	if s.Nx0 < 2 || !(s.Xb > s.Xa) {
		return GridData{}, fmt.Errorf("boustherm: invalid horizontal grid specification: Nx0=%d, [%g, %g]",
			s.Nx0, s.Xa, s.Xb)
	}
	if !(s.Zdepth > 0) || !(s.Delz0 > 0) || !(s.Fdelz >= 1) || s.Delz0 > s.Zdepth {
		return GridData{}, fmt.Errorf("boustherm: invalid vertical grid specification: Zdepth=%g, Delz0=%g, Fdelz=%g",
			s.Zdepth, s.Delz0, s.Fdelz)
	}
	xe, err := refineEdges(s, f)
	if err != nil {
		return GridData{}, err
	}
	nx := len(xe) - 1

	var d GridData
	d.Xe = xe
	d.Xc = make([]float64, nx)
	d.Delx = make([]float64, nx)
	d.ZtopC = make([]float64, nx)
	d.ZtopE = make([]float64, nx+1)
	for j := 0; j < nx; j++ {
		d.Delx[j] = xe[j+1] - xe[j]
		d.Xc[j] = (xe[j+1] + xe[j]) / 2
		d.ZtopC[j] = f(d.Xc[j])
	}
	for j, x := range xe {
		d.ZtopE[j] = f(x)
	}

	depths := []float64{0, s.Delz0}
	for depths[len(depths)-1] < s.Zdepth {
		n := len(depths)
		depths = append(depths, depths[n-1]+s.Fdelz*(depths[n-1]-depths[n-2]))
	}
	depths[len(depths)-1] = s.Zdepth
	nz := len(depths) - 1
	d.Ze = make([]float64, nz+1)
	for i := range d.Ze {
		d.Ze[i] = -depths[nz-i]
	}
	d.Delz = make([]float64, nz)
	d.Zc = make([]float64, nz)
	for i := 0; i < nz; i++ {
		d.Delz[i] = d.Ze[i+1] - d.Ze[i]
		d.Zc[i] = d.Ze[i] + d.Delz[i]/2
	}
	return d, nil
}

// refineEdges returns the refined horizontal edges.
func refineEdges(s GridSpec, f Topography) ([]float64, error) {
	maxEdges := s.MaxEdges
	if maxEdges == 0 {
		maxEdges = 1000000
	}
	zrange := s.ZRange
	if zrange == 0 {
		zrange = s.Zdepth
	}
	x := make([]float64, s.Nx0)
	for i := range x {
		x[i] = s.Xa + (s.Xb-s.Xa)*float64(i)/float64(s.Nx0-1)
	}
	h := (s.Xb - s.Xa) / 1e6
	h2 := (x[1] - x[0]) / 1e3
	fd1 := func(x float64) float64 { return (f(x+h) - f(x-h)) / (2 * h) }
	fd2 := func(x float64) float64 { return (f(x-h2) - 2*f(x) + f(x+h2)) / (h2 * h2) }

	for {
		var add []float64
		for i := 0; i < len(x)-1; i++ {
			xm := (x[i] + x[i+1]) / 2
			rho := 1 / (x[i+1] - x[i])
			c0 := div0(rho*zrange, math.Abs(f(x[i+1])-f(x[i])))
			c1 := div0(rho, math.Abs(fd1(xm)))
			c2 := div0(rho, math.Abs(fd2(xm)))
			if c0 < s.Refine[0] || c1 < s.Refine[1] || c2 < s.Refine[2] {
				add = append(add, xm)
			}
		}
		if len(add) == 0 {
			break
		}
		x = append(x, add...)
		sort.Float64s(x)
		if len(x) > maxEdges {
			return nil, fmt.Errorf("boustherm: grid refinement exceeded %d edges", maxEdges)
		}
	}

	if s.Smooth {
		for changed := true; changed; {
			changed = false
			for i := 0; i < len(x)-2; i++ {
				r := (x[i+1] - x[i]) / (x[i+2] - x[i+1])
				var xm float64
				switch {
				case r > 2.001:
					xm = (x[i+1] + x[i]) / 2
				case r < 1/2.001:
					xm = (x[i+2] + x[i+1]) / 2
				default:
					continue
				}
				x = append(x, xm)
				sort.Float64s(x)
				changed = true
				break
			}
			if len(x) > maxEdges {
				return nil, fmt.Errorf("boustherm: grid smoothing exceeded %d edges", maxEdges)
			}
		}
	}
	return x, nil
}

func div0(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}
