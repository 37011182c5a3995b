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
	"time"

	"gonum.org/v1/gonum/floats"
)

func copyFloats(v []float64) []float64 {
	o := make([]float64, len(v))
	copy(o, v)
	return o
}

// minFloat and maxFloat return 0 for empty input.
func minFloat(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Min(v)
}

func maxFloat(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Max(v)
}

// absRange returns the smallest and largest absolute values in v.
func absRange(v []float64) (min, max float64) {
	if len(v) == 0 {
		return 0, 0
	}
	min = math.Inf(1)
	for _, x := range v {
		a := math.Abs(x)
		min = math.Min(min, a)
		max = math.Max(max, a)
	}
	return min, max
}

// allFinite reports whether v holds no NaN or infinite values.
func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Subsample returns at most about n values from v, always keeping the
// first and last values. If v is not much longer than n it is returned
// as a copy.
func Subsample(v []float64, n int) []float64 {
	if n <= 0 {
		return copyFloats(v)
	}
	step := len(v) / n
	if step <= 1 {
		return copyFloats(v)
	}
	o := make([]float64, 0, n+2)
	i := 0
	for ; i < len(v); i += step {
		o = append(o, v[i])
	}
	if i-step < len(v)-1 {
		o = append(o, v[len(v)-1])
	}
	return o
}

// hms formats a duration as hours, minutes and seconds.
func hms(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) - 60*h
	s := d.Seconds() - 3600*float64(h) - 60*float64(m)
	return fmt.Sprintf("%02d:%02d:%04.1f", h, m, s)
}
