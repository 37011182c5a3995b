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

// Package boustherm simulates unconfined groundwater flow in an aquifer
// whose lower boundary is a moving freezing front. The water table follows
// the Boussinesq equation along a horizontal transect and the subsurface
// temperature follows one-dimensional heat conduction with latent heat in a
// column at every horizontal cell edge.
package boustherm

// Version gives the version number.
const Version = "0.1.0"
