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

import "math"

// column calculates the vertical physics of the temperature column on
// horizontal edge j, storing the temperature derivative in dTdt and the
// horizontal water flux in the model fields. It only writes to row j of
// the fields.
func (m *Model) column(j int, t float64, T, dTdt []float64) {
	g, f := m.grid, m.f
	nz := g.nz

	ts := m.c.SurfaceTemperature(t, g.htope[j], m.p.Surface)
	f.Tsurf[j] = ts

	gradT := f.GradT.RawRowView(j)
	gradT[g.bottomEdge()] = -m.p.FTgeo / m.kedge[g.bottomEdge()]
	for e := 1; e < nz; e++ {
		gradT[e] = (T[e] - T[e-1]) / (g.zc[e] - g.zc[e-1])
	}
	top := g.topCell()
	gradT[g.topEdge()] = (ts - T[top]) / (g.delz[top] / 2)

	aqbot := g.FreezingFront(T, ts, m.c.Freezing)
	f.Aqbot[j] = aqbot

	zedge := f.Hedge[j] - g.ztope[j]
	wsat, isat := f.Wsat.RawRowView(j), f.Isat.RawRowView(j)
	m.Saturation(T, aqbot, zedge, wsat, isat)

	qT := f.QT.RawRowView(j)
	for e := range qT {
		qT[e] = -m.kedge[e] * gradT[e]
	}

	hc := f.Captherm.RawRowView(j)
	for i := 0; i < nz; i++ {
		hc[i] = m.c.ApparentHeatCapacity(m.poro[i], T[i], wsat[i], isat[i])
		dTdt[i] = (qT[g.lowerEdge(i)] - qT[g.upperEdge(i)]) / (g.delz[i] * hc[i])
	}

	f.Kint[j] = m.IntegratedConductivity(aqbot, zedge, T)
	f.QH[j] = -f.GradH[j] * f.Kint[j]
}

// Saturation calculates the liquid (wsat) and ice (isat) saturation
// fractions of each cell in temperature column T, given the freezing
// front elevation aqbot and water table elevation zedge, both relative
// to the surface. Cells with centers above the water table are dry. The
// cell holding the front is split linearly between ice below the front
// and water above it; other saturated cells are ice if colder than
// freezing and water otherwise.
func (m *Model) Saturation(T []float64, aqbot, zedge float64, wsat, isat []float64) {
	g := m.grid
	fidx := LocateCell(g.ze, aqbot)
	for i := 0; i < g.nz; i++ {
		switch {
		case g.zc[i] >= zedge:
			wsat[i], isat[i] = 0, 0
		case i == fidx:
			isat[i] = (aqbot - g.ze[g.lowerEdge(i)]) / g.delz[i]
			wsat[i] = 1 - isat[i]
		case T[i] < m.c.Freezing:
			wsat[i], isat[i] = 0, 1
		default:
			wsat[i], isat[i] = 1, 0
		}
	}
}

// IntegratedConductivity returns the hydraulic conductivity of temperature
// column T integrated over the thawed, saturated thickness between the
// freezing front aqbot and the water table zedge [m²/s]. It is zero when
// the front is at or above the water table. The deepest and shallowest
// cells are treated as extending indefinitely beyond the grid.
func (m *Model) IntegratedConductivity(aqbot, zedge float64, T []float64) float64 {
	if aqbot >= zedge {
		return 0
	}
	g := m.grid
	var sum float64
	for i := 0; i < g.nz; i++ {
		lo, hi := g.ze[g.lowerEdge(i)], g.ze[g.upperEdge(i)]
		if g.lowerEdge(i) == g.bottomEdge() {
			lo = math.Inf(-1)
		}
		if g.upperEdge(i) == g.topEdge() {
			hi = math.Inf(1)
		}
		d := math.Min(hi, zedge) - math.Max(lo, aqbot)
		if d > 0 {
			sum += d * m.c.HydraulicConductivity(m.perm[i], T[i])
		}
	}
	return sum
}
