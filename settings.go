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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
)

// Settings holds the parameters of a simulation run.
type Settings struct {
	NStep   int     `toml:"nstep" csv:"nstep"`     // number of time steps
	TEnd    float64 `toml:"tend" csv:"tend"`       // run duration in TUnit
	TUnit   float64 `toml:"tunit" csv:"tunit"`     // seconds per unit of TEnd
	NSnap   int     `toml:"nsnap" csv:"nsnap"`     // number of snapshots
	NMaxOut int     `toml:"nmaxout" csv:"nmaxout"` // maximum length of output time series

	Hdep0 float64 `toml:"Hdep0" csv:"Hdep0"` // initial water table depth [m]
	Rmax  bool    `toml:"Rmax" csv:"Rmax"`   // reset the water table to the surface every step

	Poro0   float64 `toml:"poro0" csv:"poro0"`     // surface porosity [-]
	PoroGam float64 `toml:"porogam" csv:"porogam"` // porosity e-folding depth [m]
	Perm0   float64 `toml:"perm0" csv:"perm0"`     // surface permeability [m²]
	PermGam float64 `toml:"permgam" csv:"permgam"` // permeability e-folding depth [m]
	KTr     float64 `toml:"kTr" csv:"kTr"`         // thermal conductivity [W/m/K]
	FTgeo   float64 `toml:"fTgeo" csv:"fTgeo"`     // geothermal heat flux [W/m²]
	Ts0     float64 `toml:"Ts0" csv:"Ts0"`         // initial surface temperature [K]
	Tsf     float64 `toml:"Tsf" csv:"Tsf"`         // final surface temperature [K]
	TsGam   float64 `toml:"Tsgam" csv:"Tsgam"`     // surface temperature time constant [yr]
	TsLR    float64 `toml:"TsLR" csv:"TsLR"`       // surface temperature lapse rate [K/m]

	// Conductivity selects the thermal conductivity model: "constant"
	// uses KTr as the bulk conductivity and "harmonic" mixes rock with
	// conductivity KTr and water according to porosity.
	Conductivity string `toml:"conductivity" csv:"conductivity"`

	// FluxA and FluxB are expressions for the water flux [m²/s] entering
	// the left and right ends of the transect. See ParseFluxExpression.
	FluxA string `toml:"fluxa" csv:"fluxa"`
	FluxB string `toml:"fluxb" csv:"fluxb"`

	// MaxGradH stops the simulation when the largest water table gradient
	// exceeds it. Zero disables the check.
	MaxGradH float64 `toml:"maxgradH" csv:"maxgradH"`
}

// DefaultSettings returns a 20,000 year simulation of a thawing basaltic
// aquifer.
func DefaultSettings() Settings {
	return Settings{
		NStep:        150000000,
		TEnd:         20000,
		TUnit:        31557600,
		NSnap:        5,
		NMaxOut:      2500,
		Hdep0:        0,
		Rmax:         false,
		Poro0:        0.2,
		PoroGam:      2500,
		Perm0:        1e-13,
		PermGam:      1000,
		KTr:          3,
		FTgeo:        0.04,
		Ts0:          220,
		Tsf:          285,
		TsGam:        1,
		TsLR:         0.0044,
		Conductivity: "constant",
	}
}

// Duration returns the run duration [s].
func (s Settings) Duration() float64 { return s.TEnd * s.TUnit }

// Dt returns the time step [s].
func (s Settings) Dt() float64 { return s.Duration() / float64(s.NStep) }

// Params returns the model parameters held in s.
func (s Settings) Params() Params {
	return Params{
		Poro0:   s.Poro0,
		PoroGam: s.PoroGam,
		Perm0:   s.Perm0,
		PermGam: s.PermGam,
		KTr:     s.KTr,
		FTgeo:   s.FTgeo,
		Surface: SurfaceForcing{
			Initial:      s.Ts0,
			Final:        s.Tsf,
			TimeConstant: s.TsGam,
			LapseRate:    s.TsLR,
		},
	}
}

// ModelOptions returns the model options implied by s.
func (s Settings) ModelOptions(c Constants) ([]ModelOption, error) {
	var opts []ModelOption
	switch strings.ToLower(s.Conductivity) {
	case "", "constant":
	case "harmonic":
		opts = append(opts, WithConductivity(HarmonicConductivity{Constants: c, Rock: s.KTr}))
	default:
		return nil, fmt.Errorf("%w: unknown conductivity model %q", ErrInvalidSettings, s.Conductivity)
	}
	left, err := ParseFluxExpression(s.FluxA, c)
	if err != nil {
		return nil, err
	}
	right, err := ParseFluxExpression(s.FluxB, c)
	if err != nil {
		return nil, err
	}
	if left != nil || right != nil {
		opts = append(opts, WithBoundaryFlux(left, right))
	}
	return opts, nil
}

// Validate returns an error if s can't be used for a simulation.
func (s Settings) Validate() error {
	switch {
	case s.NStep < 1:
		return fmt.Errorf("%w: nstep=%d must be positive", ErrInvalidSettings, s.NStep)
	case !(s.TEnd > 0) || !(s.TUnit > 0):
		return fmt.Errorf("%w: tend=%g and tunit=%g must be positive", ErrInvalidSettings, s.TEnd, s.TUnit)
	case s.NSnap < 0:
		return fmt.Errorf("%w: nsnap=%d must not be negative", ErrInvalidSettings, s.NSnap)
	case s.NMaxOut < 0:
		return fmt.Errorf("%w: nmaxout=%d must not be negative", ErrInvalidSettings, s.NMaxOut)
	case s.MaxGradH < 0:
		return fmt.Errorf("%w: maxgradH=%g must not be negative", ErrInvalidSettings, s.MaxGradH)
	}
	return s.Params().validate()
}

// settingSetters holds a setter for every key in the settings text format.
var settingSetters = map[string]func(s *Settings, v string) error{
	"nstep":        intSetter(func(s *Settings) *int { return &s.NStep }),
	"tend":         floatSetter(func(s *Settings) *float64 { return &s.TEnd }),
	"tunit":        floatSetter(func(s *Settings) *float64 { return &s.TUnit }),
	"nsnap":        intSetter(func(s *Settings) *int { return &s.NSnap }),
	"nmaxout":      intSetter(func(s *Settings) *int { return &s.NMaxOut }),
	"Hdep0":        floatSetter(func(s *Settings) *float64 { return &s.Hdep0 }),
	"poro0":        floatSetter(func(s *Settings) *float64 { return &s.Poro0 }),
	"porogam":      floatSetter(func(s *Settings) *float64 { return &s.PoroGam }),
	"perm0":        floatSetter(func(s *Settings) *float64 { return &s.Perm0 }),
	"permgam":      floatSetter(func(s *Settings) *float64 { return &s.PermGam }),
	"kTr":          floatSetter(func(s *Settings) *float64 { return &s.KTr }),
	"fTgeo":        floatSetter(func(s *Settings) *float64 { return &s.FTgeo }),
	"Ts0":          floatSetter(func(s *Settings) *float64 { return &s.Ts0 }),
	"Tsf":          floatSetter(func(s *Settings) *float64 { return &s.Tsf }),
	"Tsgam":        floatSetter(func(s *Settings) *float64 { return &s.TsGam }),
	"TsLR":         floatSetter(func(s *Settings) *float64 { return &s.TsLR }),
	"maxgradH":     floatSetter(func(s *Settings) *float64 { return &s.MaxGradH }),
	"conductivity": func(s *Settings, v string) error { s.Conductivity = v; return nil },
	"fluxa":        func(s *Settings, v string) error { s.FluxA = v; return nil },
	"fluxb":        func(s *Settings, v string) error { s.FluxB = v; return nil },
	"Rmax": func(s *Settings, v string) error {
		if f, err := cast.ToFloat64E(v); err == nil {
			s.Rmax = f != 0
			return nil
		}
		b, err := cast.ToBoolE(v)
		s.Rmax = b
		return err
	},
}

// Set sets the setting named key, as used in the "key = value" format,
// from its text representation.
func (s *Settings) Set(key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidSettings, key)
	}
	if err := set(s, value); err != nil {
		return fmt.Errorf("%w: setting %s: %v", ErrInvalidSettings, key, err)
	}
	return nil
}

// SettingKeys returns the keys accepted by Set.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatSetter(field func(*Settings) *float64) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		f, err := cast.ToFloat64E(v)
		*field(s) = f
		return err
	}
}

// intSetter accepts integers written in floating point notation, such as
// 1.5e8. Fractional values and values that overflow an int are rejected.
func intSetter(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return err
		}
		if f != math.Trunc(f) || f >= float64(math.MaxInt) || f <= float64(math.MinInt) {
			return fmt.Errorf("%q is not an integer", v)
		}
		*field(s) = int(f)
		return nil
	}
}

// ParseSettingsText reads settings in "key = value" format, one per
// line. Text following a '#' is ignored. Settings missing from r keep
// their DefaultSettings values. Unknown keys are an error.
func ParseSettingsText(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i := strings.IndexByte(line, '=')
		if i < 0 {
			return s, fmt.Errorf("%w: line %d: %q is not in 'key = value' format",
				ErrInvalidSettings, lineNum, line)
		}
		key, val := strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
		if err := s.Set(key, val); err != nil {
			return s, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("boustherm: reading settings: %v", err)
	}
	return s, nil
}

// ParseSettingsTOML reads settings in TOML format. Environment variables
// in the input are expanded. Settings missing from the input keep their
// DefaultSettings values. Unknown keys are an error.
func ParseSettingsTOML(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	b, err := io.ReadAll(r)
	if err != nil {
		return s, fmt.Errorf("boustherm: reading settings: %v", err)
	}
	md, err := toml.Decode(os.ExpandEnv(string(b)), &s)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return s, fmt.Errorf("%w: unknown settings %v", ErrInvalidSettings, keys)
	}
	return s, nil
}

// ReadSettingsFile reads settings from path, using TOML format if the file
// name ends in ".toml" and the "key = value" format otherwise. The
// settings are validated.
func ReadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("boustherm: opening settings file: %v", err)
	}
	defer f.Close()
	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		s, err = ParseSettingsTOML(f)
	} else {
		s, err = ParseSettingsText(f)
	}
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err = s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// MarshalTOML returns s in TOML format.
func (s Settings) MarshalTOML() ([]byte, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(s); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// WriteText writes s in "key = value" format, with a comment line
// holding title if it is not empty.
func (s Settings) WriteText(w io.Writer, title string) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
			return err
		}
	}
	rmax := 0
	if s.Rmax {
		rmax = 1
	}
	lines := []struct {
		key string
		val interface{}
	}{
		{"nstep", s.NStep}, {"tend", s.TEnd}, {"tunit", s.TUnit},
		{"nsnap", s.NSnap}, {"nmaxout", s.NMaxOut},
		{"Hdep0", s.Hdep0}, {"Rmax", rmax},
		{"poro0", s.Poro0}, {"porogam", s.PoroGam},
		{"perm0", s.Perm0}, {"permgam", s.PermGam},
		{"kTr", s.KTr}, {"fTgeo", s.FTgeo},
		{"Ts0", s.Ts0}, {"Tsf", s.Tsf}, {"Tsgam", s.TsGam}, {"TsLR", s.TsLR},
		{"conductivity", s.Conductivity}, {"fluxa", s.FluxA}, {"fluxb", s.FluxB},
		{"maxgradH", s.MaxGradH},
	}
	for _, l := range lines {
		if str, ok := l.val.(string); ok && str == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s = %v\n", l.key, l.val); err != nil {
			return err
		}
	}
	return nil
}
