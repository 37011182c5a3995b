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

import "errors"

var (
	// ErrInvalidGrid is returned when grid arrays are missing or inconsistent.
	ErrInvalidGrid = errors.New("boustherm: invalid grid")

	// ErrInvalidSettings is returned when run settings can't be used.
	ErrInvalidSettings = errors.New("boustherm: invalid settings")

	// ErrLayout is returned when a buffer doesn't match the state layout.
	ErrLayout = errors.New("boustherm: buffer does not match state layout")

	// ErrDiverged is returned by StabilityCheck when the solution has
	// left the physically plausible range.
	ErrDiverged = errors.New("boustherm: solution diverged")
)
