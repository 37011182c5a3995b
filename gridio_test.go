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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestGridFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "grid")
	d := testGridData(3, 4, 10, 0.5, func(x float64) float64 { return x / 10 }, false)
	if err := WriteGrid(dir, d); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGrid(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []struct {
		name       string
		have, want []float64
	}{
		{"ze", g.Ze(), d.Ze}, {"zc", g.Zc(), d.Zc}, {"delz", g.Delz(), d.Delz},
		{"xe", g.Xe(), d.Xe}, {"xc", g.Xc(), d.Xc}, {"delx", g.Delx(), d.Delx},
		{"ztope", g.ZtopE(), d.ZtopE}, {"ztopc", g.ZtopC(), d.ZtopC},
	} {
		if fmt.Sprint(a.have) != fmt.Sprint(a.want) {
			t.Errorf("%s: have %v; want %v", a.name, a.have, a.want)
		}
	}
}

func TestLoadGridErrors(t *testing.T) {
	write := func(t *testing.T) string {
		dir := t.TempDir()
		if err := WriteGrid(dir, testGridData(2, 2, 1, 1, FlatTopography(0), false)); err != nil {
			t.Fatal(err)
		}
		return dir
	}
	t.Run("missing file", func(t *testing.T) {
		dir := write(t)
		if err := os.Remove(filepath.Join(dir, "zc")); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadGrid(dir); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("err = %v; want ErrInvalidGrid", err)
		}
	})
	t.Run("bad count", func(t *testing.T) {
		dir := write(t)
		if err := os.WriteFile(filepath.Join(dir, "Nx.txt"), []byte("2.5\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadGrid(dir); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("err = %v; want ErrInvalidGrid", err)
		}
	})
	t.Run("short file", func(t *testing.T) {
		dir := write(t)
		if err := os.WriteFile(filepath.Join(dir, "Nz.txt"), []byte("3"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadGrid(dir); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("err = %v; want ErrInvalidGrid", err)
		}
	})
}
