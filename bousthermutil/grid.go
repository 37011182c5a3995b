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
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm"
	"gonum.org/v1/gonum/floats"
)

// GridSpecConfig returns the grid specification held in cfg.
func GridSpecConfig(cfg *viper.Viper) boustherm.GridSpec {
	s := boustherm.DefaultGridSpec()
	s.Nx0 = cfg.GetInt("Grid.Nx0")
	s.Xa = cfg.GetFloat64("Grid.Xa")
	s.Xb = cfg.GetFloat64("Grid.Xb")
	s.Refine = [3]float64{
		cfg.GetFloat64("Grid.RefineElevation"),
		cfg.GetFloat64("Grid.RefineSlope"),
		cfg.GetFloat64("Grid.RefineCurvature"),
	}
	s.Smooth = cfg.GetBool("Grid.Smooth")
	s.Zdepth = cfg.GetFloat64("Grid.Zdepth")
	s.Delz0 = cfg.GetFloat64("Grid.Delz0")
	s.Fdelz = cfg.GetFloat64("Grid.Fdelz")
	return s
}

// TopographyConfig returns the topography described by cfg: interpolated
// from the files Grid.TopoX and Grid.TopoZ if they are set, and flat at
// Grid.Elevation otherwise.
func TopographyConfig(cfg *viper.Viper) (boustherm.Topography, error) {
	fx := os.ExpandEnv(cfg.GetString("Grid.TopoX"))
	fz := os.ExpandEnv(cfg.GetString("Grid.TopoZ"))
	if fx == "" && fz == "" {
		return boustherm.FlatTopography(cfg.GetFloat64("Grid.Elevation")), nil
	}
	if fx == "" || fz == "" {
		return nil, fmt.Errorf("boustherm: both Grid.TopoX and Grid.TopoZ must be specified")
	}
	xs, err := readFloatFile(fx)
	if err != nil {
		return nil, err
	}
	zs, err := readFloatFile(fz)
	if err != nil {
		return nil, err
	}
	return boustherm.LinearTopography(xs, zs)
}

func readFloatFile(path string) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boustherm: reading topography: %v", err)
	}
	return boustherm.DecodeFloats(b)
}

// Grid creates a grid and writes it to dir.
func Grid(dir string, spec boustherm.GridSpec, topo boustherm.Topography, log logrus.FieldLogger) error {
	log.Info("generating grid")
	d, err := boustherm.GenerateGrid(spec, topo)
	if err != nil {
		return err
	}
	// Check the result the same way the model will.
	if _, err = boustherm.NewGrid(d); err != nil {
		return err
	}
	nx, nz := len(d.Xc), len(d.Zc)
	log.WithFields(logrus.Fields{
		"Nx":          nx,
		"min_dx_frac": floats.Min(d.Delx) / (spec.Xb - spec.Xa),
		"Nz":          nz,
		"min_dz_frac": floats.Min(d.Delz) / spec.Zdepth,
	}).Info("grid generated")
	if err = boustherm.WriteGrid(dir, d); err != nil {
		return err
	}
	log.WithField("dir", dir).Info("grid files written")
	return nil
}
