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

// Porosity returns the porosity at the given depth (positive downward, m)
// for surface porosity c0 and e-folding depth c1 [m].
func Porosity(depth, c0, c1 float64) float64 {
	return c0 * math.Exp(-depth/c1)
}

// Permeability returns the permeability [m²] at the given depth
// (positive downward, m) for surface permeability c0 [m²] and
// e-folding depth c1 [m].
func Permeability(depth, c0, c1 float64) float64 {
	return c0 * math.Exp(-depth/c1)
}

// ThermalConductivity returns the bulk thermal conductivity [W/m/K] of
// water-filled rock with porosity poro and rock conductivity kRock, using
// a harmonic (series) mixing law.
func (c Constants) ThermalConductivity(poro, kRock float64) float64 {
	return kRock * c.KWater / (poro*kRock + (1-poro)*c.KWater)
}

// ApparentHeatCapacity returns the volumetric heat capacity [J/m³/K] of a
// cell with porosity poro at temperature T holding liquid and ice
// saturation fractions wsat and isat. Latent heat of the ice fraction is
// spread over PhaseWindow around the freezing point; the latent term is
// zero on the edges of the window.
func (c Constants) ApparentHeatCapacity(poro, T, wsat, isat float64) float64 {
	hc := (1-poro)*c.RhoRock*c.CRock + poro*c.RhoWater*(isat*c.CIce+wsat*c.CWater)
	if math.Abs(T-c.Freezing) < c.PhaseWindow/2 {
		hc += poro * isat * c.RhoWater * c.LatentHeat / c.PhaseWindow
	}
	return hc
}

// Viscosity returns the dynamic viscosity of water [Pa s] at temperature T [K].
// Temperatures closer than ViscosityMargin to the singularity at ViscosityC
// are clamped, so the result is always finite and positive.
func (c Constants) Viscosity(T float64) float64 {
	if lim := c.ViscosityC + c.ViscosityMargin; T < lim || math.IsNaN(T) {
		T = lim
	}
	return c.ViscosityA * math.Pow(10, c.ViscosityB/(T-c.ViscosityC))
}

// HydraulicConductivity returns the hydraulic conductivity [m/s] of
// rock with permeability perm [m²] filled with water at temperature T [K].
func (c Constants) HydraulicConductivity(perm, T float64) float64 {
	return c.RhoWater * c.Gravity * perm / c.Viscosity(T)
}

// SurfaceForcing describes the surface temperature history.
type SurfaceForcing struct {
	Initial      float64 // temperature at t=0 and zero relative elevation [K]
	Final        float64 // temperature approached as t→∞ [K]
	TimeConstant float64 // relaxation time [years]
	LapseRate    float64 // cooling with relative elevation [K/m]
}

// SurfaceTemperature returns the surface temperature [K] at time t [s] and
// relative elevation h [m] (height above the lowest point of the transect).
func (c Constants) SurfaceTemperature(t, h float64, f SurfaceForcing) float64 {
	relax := 1 - math.Exp(-t/(f.TimeConstant*c.YearSeconds))
	return f.Initial + (f.Final-f.Initial)*relax - h*f.LapseRate
}

// ConductivityModel gives the bulk thermal conductivity [W/m/K] of a cell
// as a function of its porosity.
type ConductivityModel interface {
	Conductivity(poro float64) float64
}

// ConstantConductivity is a ConductivityModel that ignores porosity.
type ConstantConductivity float64

// Conductivity implements ConductivityModel.
func (k ConstantConductivity) Conductivity(float64) float64 { return float64(k) }

// HarmonicConductivity is a ConductivityModel that mixes rock and
// water conductivities in series, weighted by porosity.
type HarmonicConductivity struct {
	Constants
	Rock float64 // rock conductivity [W/m/K]
}

// Conductivity implements ConductivityModel.
func (h HarmonicConductivity) Conductivity(poro float64) float64 {
	return h.ThermalConductivity(poro, h.Rock)
}

// harmonicMean returns the harmonic mean of a and b.
func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}
