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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	p := Params{
		NFactors:    10,
		Reg:         0.1,
		Alpha:       1,
		RandomState: 42,
	}
	// typed getters with conversion
	assert.Equal(t, 10, p.GetInt(NFactors, 50))
	assert.Equal(t, 0.1, p.GetFloat64(Reg, 0.5))
	assert.Equal(t, 1.0, p.GetFloat64(Alpha, 0.01))
	assert.Equal(t, int64(42), p.GetInt64(RandomState, 0))
	// defaults
	assert.Equal(t, 15, p.GetInt(NEpochs, 15))
	assert.Equal(t, 1e-4, p.GetFloat64(Tolerance, 1e-4))
	// type mismatch falls back to the default
	assert.Equal(t, 50, Params{NFactors: "ten"}.GetInt(NFactors, 50))
}

func TestParams_Copy(t *testing.T) {
	p := Params{NFactors: 10}
	q := p.Copy()
	q[NFactors] = 20
	assert.Equal(t, 10, p.GetInt(NFactors, 0))
	assert.Equal(t, 20, q.GetInt(NFactors, 0))
}

func TestParams_Overwrite(t *testing.T) {
	p := Params{NFactors: 10, Reg: 0.1}
	merged := p.Overwrite(Params{Reg: 0.5, Alpha: 0.01})
	assert.Equal(t, 10, merged.GetInt(NFactors, 0))
	assert.Equal(t, 0.5, merged.GetFloat64(Reg, 0))
	assert.Equal(t, 0.01, merged.GetFloat64(Alpha, 0))
	// the receiver is untouched
	assert.Equal(t, 0.1, p.GetFloat64(Reg, 0))
}

func TestParamsGrid_NumCombinations(t *testing.T) {
	grid := ParamsGrid{
		NFactors: {8, 16, 32},
		Reg:      {0.01, 0.1},
	}
	assert.Equal(t, 6, grid.NumCombinations())
	assert.Equal(t, 1, ParamsGrid{}.NumCombinations())
}

func TestExpandGrid(t *testing.T) {
	grid := ParamsGrid{
		NFactors: {1, 2},
		Reg:      {0.1, 0.2},
	}
	candidates := ExpandGrid(grid)
	assert.Equal(t, []Params{
		{NFactors: 1, Reg: 0.1},
		{NFactors: 1, Reg: 0.2},
		{NFactors: 2, Reg: 0.1},
		{NFactors: 2, Reg: 0.2},
	}, candidates)
	// expansion order is stable across calls
	assert.Equal(t, candidates, ExpandGrid(grid))
}
