// Copyright 2025 Skill Recommendation System Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/egesia1/Skill-Recommendation-System/base/log"
)

/* ParamName */

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	NFactors    ParamName = "NFactors"    // number of latent factors (k)
	NEpochs     ParamName = "NEpochs"     // maximum number of iterations
	Reg         ParamName = "Reg"         // regularization strength (lambda)
	Alpha       ParamName = "Alpha"       // confidence weight for unobserved entries (w0)
	Tolerance   ParamName = "Tolerance"   // relative improvement below which training stops
	InitMean    ParamName = "InitMean"    // mean of gaussian initial factors
	InitStdDev  ParamName = "InitStdDev"  // standard deviation of gaussian initial factors
	RandomState ParamName = "RandomState" // random seed
)

// Params stores hyper-parameters for a model. It is a map between names and
// values. For example, hyper-parameters for WALS are given by:
//
//	model.Params{
//		model.NFactors: 50,
//		model.Reg:      0.1,
//		model.Alpha:    0.01,
//		model.NEpochs:  15,
//	}
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params)
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// GetInt gets an integer parameter by name. Returns _default if not exists
// or type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("name", string(name)),
				zap.String("expect", "int"),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetInt64 gets an int64 parameter by name. Returns _default if not exists
// or type doesn't match. The type will be converted if given int.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("name", string(name)),
				zap.String("expect", "int64"),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetFloat64 gets a float parameter by name. Returns _default if not exists
// or type doesn't match. The type will be converted if given int.
func (parameters Params) GetFloat64(name ParamName, _default float64) float64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("name", string(name)),
				zap.String("expect", "float64"),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// Overwrite merges another set of hyper-parameters into a copy of the
// current one.
func (parameters Params) Overwrite(params Params) Params {
	merged := parameters.Copy()
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

// ParamsGrid contains candidate values for each hyper-parameter.
type ParamsGrid map[ParamName][]interface{}

// NumCombinations returns the number of combinations in the grid.
func (grid ParamsGrid) NumCombinations() int {
	count := 1
	for _, values := range grid {
		count *= len(values)
	}
	return count
}

// ExpandGrid expands the grid into the full cross-product of candidate
// hyper-parameter sets. The order of expansion is fixed by the order of
// paramNames so repeated searches visit candidates identically.
func ExpandGrid(grid ParamsGrid) []Params {
	paramNames := make([]ParamName, 0, len(grid))
	for _, name := range []ParamName{NFactors, Reg, Alpha, NEpochs, Tolerance, InitMean, InitStdDev, RandomState} {
		if _, exist := grid[name]; exist {
			paramNames = append(paramNames, name)
		}
	}
	candidates := make([]Params, 0, grid.NumCombinations())
	var dfs func(depth int, params Params)
	dfs = func(depth int, params Params) {
		if depth == len(paramNames) {
			candidates = append(candidates, params.Copy())
			return
		}
		name := paramNames[depth]
		for _, val := range grid[name] {
			params[name] = val
			dfs(depth+1, params)
		}
	}
	dfs(0, Params{})
	return candidates
}
