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
	"strings"
	"sync"

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"
)

// fluxFunctions are the functions available to boundary flux expressions.
var fluxFunctions = map[string]govaluate.ExpressionFunction{
	"exp": unaryFluxFunc("exp", math.Exp),
	"sin": unaryFluxFunc("sin", math.Sin),
	"cos": unaryFluxFunc("cos", math.Cos),
	"abs": unaryFluxFunc("abs", math.Abs),
	"min": binaryFluxFunc("min", math.Min),
	"max": binaryFluxFunc("max", math.Max),
}

// fluxArgs checks that args holds n numbers and returns them.
func fluxArgs(name string, n int, args []interface{}) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("boustherm: got %d arguments for function '%s', but needs %d", len(args), name, n)
	}
	v := make([]float64, n)
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("boustherm: function '%s' needs a number for argument %d, but got %T", name, i+1, a)
		}
		v[i] = f
	}
	return v, nil
}

func unaryFluxFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		v, err := fluxArgs(name, 1, args)
		if err != nil {
			return nil, err
		}
		return f(v[0]), nil
	}
}

func binaryFluxFunc(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		v, err := fluxArgs(name, 2, args)
		if err != nil {
			return nil, err
		}
		return f(v[0], v[1]), nil
	}
}

// ParseFluxExpression returns a FluxFunc that evaluates expression, which
// gives a water flux into the domain [m²/s] in terms of the model time
// in seconds (variable t) or years (variable yr). The functions exp, sin,
// cos, abs, min and max are available. An empty expression or "0" returns
// a nil FluxFunc, meaning no flux.
//
// The expression is evaluated once at t=0 to check it. If a later
// evaluation fails, the returned FluxFunc gives NaN, which stops the
// simulation at the next stability check, and the first such error is
// logged.
func ParseFluxExpression(expression string, c Constants) (FluxFunc, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" || expression == "0" {
		return nil, nil
	}
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expression, fluxFunctions)
	if err != nil {
		return nil, fmt.Errorf("boustherm: parsing boundary flux %q: %v", expression, err)
	}
	for _, v := range e.Vars() {
		if v != "t" && v != "yr" {
			return nil, fmt.Errorf("boustherm: boundary flux %q: undefined variable '%s'", expression, v)
		}
	}
	eval := func(t float64) (float64, error) {
		r, err := e.Evaluate(map[string]interface{}{"t": t, "yr": t / c.YearSeconds})
		if err != nil {
			return math.NaN(), err
		}
		v, ok := r.(float64)
		if !ok {
			return math.NaN(), fmt.Errorf("boustherm: boundary flux %q evaluates to %T, not a number", expression, r)
		}
		return v, nil
	}
	if _, err := eval(0); err != nil {
		return nil, err
	}
	var once sync.Once
	return func(t float64) float64 {
		v, err := eval(t)
		if err != nil {
			once.Do(func() {
				logrus.WithFields(logrus.Fields{"flux": expression, "t": t}).
					WithError(err).Error("boustherm: evaluating boundary flux")
			})
		}
		return v
	}, nil
}
