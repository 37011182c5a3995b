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

import "fmt"

// StateLayout describes how the water table and temperature columns are
// packed into one contiguous buffer: Nx water-table values followed by
// Nx+1 temperature columns of Nz values each. Derivative buffers use the
// same layout.
type StateLayout struct {
	Nx, Nz int
}

// Len returns the length of a buffer with this layout.
func (l StateLayout) Len() int { return l.Nx + l.Nz*(l.Nx+1) }

// Check returns an error if buf does not have this layout's length.
func (l StateLayout) Check(buf []float64) error {
	if len(buf) != l.Len() {
		return fmt.Errorf("%w: length %d, want %d (Nx=%d, Nz=%d)",
			ErrLayout, len(buf), l.Len(), l.Nx, l.Nz)
	}
	return nil
}

// H returns the water-table block of buf. The returned slice shares
// memory with buf.
func (l StateLayout) H(buf []float64) []float64 {
	return buf[0:l.Nx:l.Nx]
}

// T returns temperature column j of buf, where column j sits on
// horizontal edge j. The returned slice shares memory with buf.
func (l StateLayout) T(buf []float64, j int) []float64 {
	start := l.Nx + j*l.Nz
	return buf[start : start+l.Nz : start+l.Nz]
}

// Columns returns all temperature columns of buf.
func (l StateLayout) Columns(buf []float64) [][]float64 {
	o := make([][]float64, l.Nx+1)
	for j := range o {
		o[j] = l.T(buf, j)
	}
	return o
}
