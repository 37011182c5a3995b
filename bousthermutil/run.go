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
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm"
)

// Run runs a simulation on the grid in gridDir with the settings in
// settingsFile, writing output to outputDir. workers is the number of
// goroutines for the column calculations, where 0 means all processors.
// If progress is true a progress bar is shown on standard output.
func Run(ctx context.Context, gridDir, settingsFile, outputDir string, workers int, progress bool, log logrus.FieldLogger) error {
	log.WithField("dir", gridDir).Info("reading grid")
	g, err := boustherm.LoadGrid(gridDir)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"Nx": g.Nx(), "Nz": g.Nz()}).Info("grid loaded")

	log.WithField("file", settingsFile).Info("reading settings")
	s, err := boustherm.ReadSettingsFile(settingsFile)
	if err != nil {
		return err
	}

	c := boustherm.DefaultConstants()
	opts, err := s.ModelOptions(c)
	if err != nil {
		return err
	}
	if workers > 0 {
		opts = append(opts, boustherm.WithWorkers(workers))
	}
	m, err := boustherm.NewModel(g, c, s.Params(), opts...)
	if err != nil {
		return err
	}

	out, err := boustherm.OpenOutput(ctx, outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	out.Log = log

	// Keep a copy of the settings with the output.
	b, err := s.MarshalTOML()
	if err != nil {
		return fmt.Errorf("boustherm: encoding settings: %v", err)
	}
	if err = out.WriteBytes(ctx, "settings.toml", b); err != nil {
		return err
	}

	sim := boustherm.NewSimulation(m, s, out)
	sim.Log = log
	if progress {
		uiprogress.Start()
		defer uiprogress.Stop()
		sim.StepFuncs = append(sim.StepFuncs, progressBar(s.NStep, c.YearSeconds))
	}

	log.WithFields(logrus.Fields{
		"duration_yr": s.Duration() / c.YearSeconds,
		"dt_s":        s.Dt(),
		"steps":       s.NStep,
		"snapshots":   s.NSnap,
	}).Info("starting simulation")
	start := time.Now()
	if err := sim.Run(ctx); err != nil {
		return err
	}
	log.WithField("walltime", time.Since(start).String()).Info("simulation finished")
	return nil
}

// progressBar returns a DomainManipulator that advances a progress bar
// with nstep steps.
func progressBar(nstep int, yearSeconds float64) boustherm.DomainManipulator {
	var t float64
	bar := uiprogress.AddBar(nstep).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("%10.4g yr", t/yearSeconds)
	})
	return func(sim *boustherm.Simulation) error {
		t = sim.Solver().Time()
		bar.Incr()
		return nil
	}
}
