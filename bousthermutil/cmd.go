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
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	gs := boustherm.DefaultGridSpec()

	// Options are the configuration options available to boustherm.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity: one of debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridDir",
			usage: `
              GridDir is the directory holding the grid files. It is read by
              'run' and written by 'grid'. It can include environment variables.`,
			shorthand:  "g",
			defaultVal: "grid",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "SettingsFile",
			usage: `
              SettingsFile is the path to the run settings, either in TOML format
              (if the name ends in .toml) or in 'key = value' format.`,
			shorthand:  "s",
			defaultVal: "settings.txt",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the location where model output is written. It can be
              a local directory or a bucket URL such as file:///path or mem://.`,
			shorthand:  "o",
			defaultVal: "output",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of goroutines used for the column calculations.
              Zero means use all available processors.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Progress",
			usage: `
              Progress specifies whether to show a progress bar.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nx0",
			usage: `
              Grid.Nx0 is the number of evenly spaced horizontal edges to start
              grid refinement from.`,
			defaultVal: gs.Nx0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Xa",
			usage: `
              Grid.Xa is the left end of the transect [m].`,
			defaultVal: gs.Xa,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Xb",
			usage: `
              Grid.Xb is the right end of the transect [m].`,
			defaultVal: gs.Xb,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.RefineElevation",
			usage: `
              Grid.RefineElevation is the refinement threshold for elevation
              differences between neighboring edges. Larger values give more edges.`,
			defaultVal: gs.Refine[0],
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.RefineSlope",
			usage: `
              Grid.RefineSlope is the refinement threshold for topographic slope.`,
			defaultVal: gs.Refine[1],
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.RefineCurvature",
			usage: `
              Grid.RefineCurvature is the refinement threshold for topographic curvature.`,
			defaultVal: gs.Refine[2],
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Smooth",
			usage: `
              Grid.Smooth specifies whether neighboring horizontal cells may differ
              in width by at most a factor of 2.`,
			defaultVal: gs.Smooth,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Zdepth",
			usage: `
              Grid.Zdepth is the thickness of each column [m].`,
			defaultVal: gs.Zdepth,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Delz0",
			usage: `
              Grid.Delz0 is the thickness of the surface cell [m].`,
			defaultVal: gs.Delz0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Fdelz",
			usage: `
              Grid.Fdelz is the growth factor of cell thickness with depth.`,
			defaultVal: gs.Fdelz,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.TopoX",
			usage: `
              Grid.TopoX is a float64 file holding the horizontal coordinates of
              the topography. If empty, the topography is flat at Grid.Elevation.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.TopoZ",
			usage: `
              Grid.TopoZ is a float64 file holding the elevations matching Grid.TopoX.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Elevation",
			usage: `
              Grid.Elevation is the elevation of flat topography [m].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Batch.Params",
			usage: `
              Batch.Params is a TOML file giving a list of values for each setting
              to be varied. Every combination of values becomes a trial.`,
			defaultVal: "batch.toml",
			flagsets:   []*pflag.FlagSet{batchTableCmd.Flags()},
		},
		{
			name: "Batch.Table",
			usage: `
              Batch.Table is the CSV file holding one trial per row.`,
			defaultVal: "batch.csv",
			flagsets:   []*pflag.FlagSet{batchTableCmd.Flags(), batchSetupCmd.Flags()},
		},
		{
			name: "Batch.First",
			usage: `
              Batch.First is the name (number) of the first trial.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{batchTableCmd.Flags()},
		},
		{
			name: "Batch.Dir",
			usage: `
              Batch.Dir is the directory in which a subdirectory with a settings
              file is created for each trial.`,
			defaultVal: "batch",
			flagsets:   []*pflag.FlagSet{batchSetupCmd.Flags()},
		},
		{
			name: "Batch.Clean",
			usage: `
              Batch.Clean specifies whether to delete Batch.Dir if it already exists.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{batchSetupCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BOUSTHERM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(batchCmd)
	batchCmd.AddCommand(batchTableCmd)
	batchCmd.AddCommand(batchSetupCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("boustherm: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("boustherm: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "boustherm",
	Short: "A model of groundwater flow in a thawing aquifer.",
	Long: `boustherm simulates unconfined groundwater flow along a topographic
transect where the bottom of the aquifer is a freezing front that moves
as the subsurface warms. Use the subcommands specified below to access the
model functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BOUSTHERM_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of boustherm.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("boustherm v%s\n", boustherm.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run loads the grid in GridDir and the settings in SettingsFile, runs a
simulation and writes its output to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(context.Background(),
			os.ExpandEnv(Cfg.GetString("GridDir")),
			os.ExpandEnv(Cfg.GetString("SettingsFile")),
			os.ExpandEnv(Cfg.GetString("OutputDir")),
			Cfg.GetInt("Workers"),
			Cfg.GetBool("Progress"),
			logrus.StandardLogger(),
		)
	},
	DisableAutoGenTag: true,
}

// gridCmd creates a grid.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Create a grid",
	Long: `grid creates a horizontal grid refined where the topography changes
quickly and a vertical grid that coarsens with depth, and writes it to GridDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := GridSpecConfig(Cfg)
		topo, err := TopographyConfig(Cfg)
		if err != nil {
			return err
		}
		return Grid(os.ExpandEnv(Cfg.GetString("GridDir")), spec, topo, logrus.StandardLogger())
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Prepare batches of simulations.",
	Long: `batch prepares many simulations with different settings. Use 'table' to
create a table of trials and 'setup' to create a settings file for each trial.`,
	DisableAutoGenTag: true,
}

var batchTableCmd = &cobra.Command{
	Use:   "table",
	Short: "Create a table of trials.",
	Long: `table reads lists of setting values from Batch.Params and writes every
combination of them as a row of Batch.Table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := BatchTable(
			os.ExpandEnv(Cfg.GetString("Batch.Params")),
			os.ExpandEnv(Cfg.GetString("Batch.Table")),
			Cfg.GetInt("Batch.First"),
		)
		if err != nil {
			return err
		}
		logrus.Infof("batch table with %d trials written to %s", n, Cfg.GetString("Batch.Table"))
		return nil
	},
	DisableAutoGenTag: true,
}

var batchSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a directory and settings file for each trial.",
	Long: `setup reads the trials in Batch.Table and creates a subdirectory of
Batch.Dir holding a settings.txt file for each one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return BatchSetup(
			os.ExpandEnv(Cfg.GetString("Batch.Table")),
			os.ExpandEnv(Cfg.GetString("Batch.Dir")),
			Cfg.GetBool("Batch.Clean"),
			logrus.StandardLogger(),
		)
	},
	DisableAutoGenTag: true,
}
