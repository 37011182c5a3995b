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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// LoadGrid reads a grid from directory dir. The directory holds the cell
// counts in the text files Nz.txt and Nx.txt and the coordinate arrays as
// headerless little-endian float64 files named ze, zc, delz, xe, xc, delx,
// ztope and ztopc.
func LoadGrid(dir string) (*Grid, error) {
	nz, err := readCount(filepath.Join(dir, "Nz.txt"))
	if err != nil {
		return nil, err
	}
	nx, err := readCount(filepath.Join(dir, "Nx.txt"))
	if err != nil {
		return nil, err
	}
	var d GridData
	for _, f := range []struct {
		name string
		dst  *[]float64
		n    int
	}{
		{"ze", &d.Ze, nz + 1}, {"zc", &d.Zc, nz}, {"delz", &d.Delz, nz},
		{"xe", &d.Xe, nx + 1}, {"xc", &d.Xc, nx}, {"delx", &d.Delx, nx},
		{"ztope", &d.ZtopE, nx + 1}, {"ztopc", &d.ZtopC, nx},
	} {
		if *f.dst, err = readFloats(filepath.Join(dir, f.name), f.n); err != nil {
			return nil, err
		}
	}
	return NewGrid(d)
}

// readCount reads a single positive integer from a text file.
func readCount(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	s := strings.TrimSpace(string(b))
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || v != math.Trunc(v) || v < 1 {
		return 0, fmt.Errorf("%w: %s does not hold a positive integer: %q", ErrInvalidGrid, path, s)
	}
	return int(v), nil
}

// readFloats reads the first n values of a float64 file.
func readFloats(path string, n int) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	if len(b) < 8*n {
		return nil, fmt.Errorf("%w: %s holds %d bytes; it needs %d values (%d bytes)",
			ErrInvalidGrid, path, len(b), n, 8*n)
	}
	return DecodeFloats(b[:8*n])
}

// WriteGrid writes d to directory dir in the format read by LoadGrid,
// creating the directory if necessary.
func WriteGrid(dir string, d GridData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("boustherm: creating grid directory: %v", err)
	}
	for name, n := range map[string]int{"Nz.txt": len(d.Zc), "Nx.txt": len(d.Xc)} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strconv.Itoa(n)+"\n"), 0644); err != nil {
			return fmt.Errorf("boustherm: writing grid: %v", err)
		}
	}
	for name, v := range map[string][]float64{
		"ze": d.Ze, "zc": d.Zc, "delz": d.Delz,
		"xe": d.Xe, "xc": d.Xc, "delx": d.Delx,
		"ztope": d.ZtopE, "ztopc": d.ZtopC,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), EncodeFloats(v), 0644); err != nil {
			return fmt.Errorf("boustherm: writing grid: %v", err)
		}
	}
	return nil
}
