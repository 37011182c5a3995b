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

// Command boustherm is a command-line interface for the boustherm
// groundwater and heat transport model.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/boustherm/bousthermutil"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := bousthermutil.Root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
