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

package bousthermutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm"
)

const testSettingsText = `nstep = 4
tend = 4
tunit = 1
nsnap = 2
Ts0 = 250
Tsf = 250
Hdep0 = 1
`

func testGridSpec() boustherm.GridSpec {
	s := boustherm.DefaultGridSpec()
	s.Nx0, s.Xa, s.Xb = 5, 0, 100
	s.Zdepth, s.Delz0, s.Fdelz = 10, 1, 1.5
	return s
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	log := logrus.New()
	log.Out = testWriter{t}

	gridDir := filepath.Join(dir, "grid")
	if err := Grid(gridDir, testGridSpec(), boustherm.FlatTopography(10), log); err != nil {
		t.Fatal(err)
	}
	settings := filepath.Join(dir, "settings.txt")
	if err := os.WriteFile(settings, []byte(testSettingsText), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	if err := Run(context.Background(), gridDir, settings, outDir, 2, false, log); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"settings.toml", "snap_0", "snap_2", "snap_t", "poro", "o_t", "Kint_2"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s was not written: %v", name, err)
		}
	}
	b, err := os.ReadFile(filepath.Join(outDir, "snap_t"))
	if err != nil {
		t.Fatal(err)
	}
	times, err := boustherm.DecodeFloats(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 3 || times[2] != 4 {
		t.Errorf("snapshot times %v; want [0 2 4]", times)
	}

	s, err := boustherm.ParseSettingsTOML(mustOpen(t, filepath.Join(outDir, "settings.toml")))
	if err != nil {
		t.Fatal(err)
	}
	if s.NStep != 4 || s.Hdep0 != 1 {
		t.Errorf("stored settings %+v", s)
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestTopographyConfig(t *testing.T) {
	dir := t.TempDir()
	fx, fz := filepath.Join(dir, "x"), filepath.Join(dir, "z")
	if err := os.WriteFile(fx, boustherm.EncodeFloats([]float64{0, 100}), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fz, boustherm.EncodeFloats([]float64{0, 50}), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := viper.New()
	cfg.Set("Grid.Elevation", 3.0)
	f, err := TopographyConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if z := f(40); z != 3 {
		t.Errorf("flat topography %g; want 3", z)
	}
	cfg.Set("Grid.TopoX", fx)
	if _, err = TopographyConfig(cfg); err == nil {
		t.Error("no error without elevations")
	}
	cfg.Set("Grid.TopoZ", fz)
	if f, err = TopographyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if z := f(40); z != 20 {
		t.Errorf("interpolated topography %g; want 20", z)
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	Root.SetOutput(&out)

	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "boustherm v"+boustherm.Version) {
		t.Errorf("version output %q", out.String())
	}

	gridDir := filepath.Join(dir, "grid")
	Root.SetArgs([]string{"grid", "--GridDir=" + gridDir, "--Grid.Nx0=5", "--Grid.Xa=0",
		"--Grid.Xb=100", "--Grid.Zdepth=10", "--Grid.Delz0=1", "--Grid.Fdelz=1.5", "--Grid.Elevation=2"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	g, err := boustherm.LoadGrid(gridDir)
	if err != nil {
		t.Fatal(err)
	}
	if g.Nx() != 4 || g.Nz() != 5 {
		t.Errorf("grid size %dx%d; want 4x5", g.Nx(), g.Nz())
	}
	if g.ZtopC()[0] != 2 {
		t.Errorf("elevation %g; want 2", g.ZtopC()[0])
	}

	settings := filepath.Join(dir, "settings.txt")
	if err := os.WriteFile(settings, []byte(testSettingsText), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	Root.SetArgs([]string{"run", "-g", gridDir, "-s", settings, "-o", outDir, "--LogLevel=warn"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "snap_2")); err != nil {
		t.Error(err)
	}
}
