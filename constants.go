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

// Constants holds the physical constants used by the model. Values are in
// SI units unless noted otherwise.
type Constants struct {
	YearSeconds float64 // length of a year [s]
	Gravity     float64 // gravitational acceleration [m/s²]
	Freezing    float64 // freezing temperature of water [K]

	RhoWater float64 // density of water [kg/m³]
	RhoRock  float64 // density of rock [kg/m³]

	CIce   float64 // specific heat of ice [J/kg/K]
	CWater float64 // specific heat of water [J/kg/K]
	CRock  float64 // specific heat of rock [J/kg/K]

	KWater float64 // thermal conductivity of water [W/m/K]

	LatentHeat  float64 // latent heat of fusion of water [J/kg]
	PhaseWindow float64 // temperature width of the smoothed phase change [K]

	// Viscosity of water follows ViscosityA*10^(ViscosityB/(T-ViscosityC)).
	ViscosityA, ViscosityB, ViscosityC float64 // [Pa s], [K], [K]

	// ViscosityMargin is the smallest allowed distance between a temperature
	// and ViscosityC. Colder temperatures are clamped before evaluating the
	// viscosity law. [K]
	ViscosityMargin float64
}

// DefaultConstants returns the constants for water and basaltic rock
// on Mars.
func DefaultConstants() Constants {
	return Constants{
		YearSeconds:     31557600,
		Gravity:         3.72,
		Freezing:        273,
		RhoWater:        1000,
		RhoRock:         2900,
		CIce:            2050,
		CWater:          4180,
		CRock:           840,
		KWater:          0.59,
		LatentHeat:      334000,
		PhaseWindow:     2.5,
		ViscosityA:      2.4e-5,
		ViscosityB:      248,
		ViscosityC:      140,
		ViscosityMargin: 1,
	}
}
