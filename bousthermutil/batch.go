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
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm"
	"github.com/spf13/cast"
)

// Trial is one row of a batch table.
type Trial struct {
	Name string `csv:"trial"`
	boustherm.Settings
}

// Trials returns every combination of the setting values in params, where
// the values of the last key vary fastest. Settings not in params keep
// their default values. Trials are named with consecutive numbers
// starting at first.
func Trials(keys []string, params map[string][]interface{}, first int) ([]*Trial, error) {
	n := 1
	for _, k := range keys {
		if len(params[k]) == 0 {
			return nil, fmt.Errorf("boustherm: batch setting %s has no values", k)
		}
		n *= len(params[k])
	}
	trials := make([]*Trial, 0, n)
	idx := make([]int, len(keys))
	for t := 0; t < n; t++ {
		tr := &Trial{Name: cast.ToString(first + t), Settings: boustherm.DefaultSettings()}
		for i, k := range keys {
			if err := tr.Set(k, cast.ToString(params[k][idx[i]])); err != nil {
				return nil, err
			}
		}
		trials = append(trials, tr)
		for i := len(keys) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(params[keys[i]]) {
				break
			}
			idx[i] = 0
		}
	}
	return trials, nil
}

// readBatchParams reads a TOML file in which every key is a setting and
// every value is a list of values (or a single value) for that setting.
// The keys are returned in the order they appear in the file.
func readBatchParams(path string) ([]string, map[string][]interface{}, error) {
	var raw map[string]interface{}
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("boustherm: reading batch parameters: %v", err)
	}
	var keys []string
	params := make(map[string][]interface{})
	for _, k := range md.Keys() {
		name := k.String()
		switch v := raw[name].(type) {
		case []interface{}:
			params[name] = v
		case map[string]interface{}:
			return nil, nil, fmt.Errorf("boustherm: batch parameter %s is a table", name)
		default:
			params[name] = []interface{}{v}
		}
		keys = append(keys, name)
	}
	return keys, params, nil
}

// BatchTable writes every combination of the setting values in the TOML
// file paramsFile as a row of the CSV file tableFile and returns the
// number of trials.
func BatchTable(paramsFile, tableFile string, first int) (int, error) {
	keys, params, err := readBatchParams(paramsFile)
	if err != nil {
		return 0, err
	}
	trials, err := Trials(keys, params, first)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(tableFile)
	if err != nil {
		return 0, fmt.Errorf("boustherm: creating batch table: %v", err)
	}
	if err = gocsv.MarshalFile(&trials, f); err != nil {
		f.Close()
		return 0, fmt.Errorf("boustherm: writing batch table: %v", err)
	}
	return len(trials), f.Close()
}

// ReadBatchTable reads the trials in a CSV file written by BatchTable.
func ReadBatchTable(tableFile string) ([]*Trial, error) {
	f, err := os.Open(tableFile)
	if err != nil {
		return nil, fmt.Errorf("boustherm: opening batch table: %v", err)
	}
	defer f.Close()
	var trials []*Trial
	if err := gocsv.UnmarshalFile(f, &trials); err != nil {
		return nil, fmt.Errorf("boustherm: reading batch table: %v", err)
	}
	return trials, nil
}

// BatchSetup creates a subdirectory of dir for every trial in tableFile
// and writes the trial's settings.txt file into it. If dir already exists
// it is deleted when clean is true and an error is returned otherwise.
func BatchSetup(tableFile, dir string, clean bool, log logrus.FieldLogger) error {
	trials, err := ReadBatchTable(tableFile)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		if !clean {
			return fmt.Errorf("boustherm: batch directory %s already exists", dir)
		}
		log.WithField("dir", dir).Info("removing existing batch directory")
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	for _, t := range trials {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("boustherm: trial %s: %w", t.Name, err)
		}
		sub := filepath.Join(dir, t.Name)
		if err := os.MkdirAll(sub, 0755); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(sub, "settings.txt"))
		if err != nil {
			return err
		}
		if err := t.WriteText(f, "settings for trial: "+t.Name); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("dir", sub).Debug("trial settings written")
	}
	log.WithFields(logrus.Fields{"dir": dir, "trials": len(trials)}).Info("batch directories created")
	return nil
}
