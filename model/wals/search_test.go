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

package wals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egesia1/Skill-Recommendation-System/model"
)

// newHeldOutSplit builds the block matrix with one entry held out for
// validation. The held-out row keeps two trained observations, so a good
// factorization reconstructs the missing entry.
func newHeldOutSplit() (*DataSet, *DataSet) {
	train := NewDataSet(false)
	for block := 0; block < 2; block++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if block == 0 && i == 0 && j == 1 {
					continue
				}
				if err := train.AddRelation(rowId(block*3+i), colId(block*3+j), 1); err != nil {
					panic(err)
				}
			}
		}
	}
	valid := shareIndex(train.RowIndex, train.ColIndex, false)
	valid.addTriple(train.RowIndex.ToNumber(rowId(0)), train.ColIndex.ToNumber(colId(1)), 1)
	return train, valid
}

func TestGridSearch_SelectsMinimum(t *testing.T) {
	train, valid := newHeldOutSplit()
	candidates := []model.Params{
		// underfits with a single factor
		{
			model.NFactors:    1,
			model.NEpochs:     1,
			model.Reg:         0.1,
			model.Alpha:       0.01,
			model.RandomState: int64(0),
		},
		// crushed by regularization, predictions collapse toward zero
		{
			model.NFactors:    4,
			model.NEpochs:     10,
			model.Reg:         100.0,
			model.Alpha:       0.01,
			model.RandomState: int64(0),
		},
		// enough factors to fit the block structure
		{
			model.NFactors:    4,
			model.NEpochs:     40,
			model.Reg:         0.01,
			model.Alpha:       0.01,
			model.RandomState: int64(0),
		},
	}
	result, err := gridSearch(train, valid, candidates, NewFitConfig().SetJobs(1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.BestIndex)
	assert.Equal(t, candidates[2], result.BestParams)
	assert.Less(t, result.BestScore, 0.5)
	assert.Len(t, result.Scores, 3)
	assert.Greater(t, result.Scores[1].ValidRMSE, result.Scores[2].ValidRMSE)
	// the winning factors are kept, no retraining needed
	require.NotNil(t, result.BestModel)
	assert.False(t, result.BestModel.Invalid())
	assert.InDelta(t, 1, result.BestModel.Predict(rowId(0), colId(1)), 0.5)
}

func TestGridSearch_SkipsSingular(t *testing.T) {
	train, valid := newHeldOutSplit()
	candidates := []model.Params{
		// rows carry at most three observations, far below the factor
		// count, and nothing regularizes the system
		{
			model.NFactors: 8,
			model.NEpochs:  5,
			model.Reg:      0.0,
			model.Alpha:    0.0,
		},
		{
			model.NFactors:    4,
			model.NEpochs:     20,
			model.Reg:         0.01,
			model.Alpha:       0.01,
			model.RandomState: int64(0),
		},
	}
	result, err := gridSearch(train, valid, candidates, NewFitConfig().SetJobs(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.BestIndex)
	assert.True(t, result.Scores[0].Skipped)
	assert.NotEmpty(t, result.Scores[0].SkipReason)
	assert.False(t, result.Scores[1].Skipped)
}

func TestGridSearch_Split(t *testing.T) {
	ds := NewDataSet(false)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			require.NoError(t, ds.AddRelation(rowId(i), colId(j), 1))
		}
	}
	candidates := []model.Params{
		{model.NFactors: 2, model.NEpochs: 10, model.RandomState: int64(0)},
		{model.NFactors: 4, model.NEpochs: 10, model.RandomState: int64(0)},
	}
	result, err := GridSearch(ds, candidates, 0.1, 42, NewFitConfig().SetJobs(1))
	require.NoError(t, err)
	assert.Len(t, result.Scores, 2)
	require.NotNil(t, result.BestModel)
	assert.False(t, result.BestModel.Invalid())
	// the seeded split makes the search reproducible
	again, err := GridSearch(ds, candidates, 0.1, 42, NewFitConfig().SetJobs(1))
	require.NoError(t, err)
	assert.Equal(t, result.BestIndex, again.BestIndex)
	assert.Equal(t, result.BestScore, again.BestScore)
}

func TestGridSearch_Errors(t *testing.T) {
	ds := NewDataSet(false)
	require.NoError(t, ds.AddRelation("chef", "cooking", 1))
	// no candidates
	_, err := GridSearch(ds, nil, 0.1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	// a malformed candidate fails the whole search before training
	_, err = GridSearch(ds, []model.Params{
		{model.NEpochs: 1},
		{model.NFactors: -1},
	}, 0.1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	// the split yields no held-out entries
	_, err = GridSearch(ds, []model.Params{{model.NEpochs: 1}}, 0.1, 0, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
	// empty interaction matrix
	_, err = GridSearch(NewDataSet(false), []model.Params{{model.NEpochs: 1}}, 0.1, 0, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestGridSearch_TieBreak(t *testing.T) {
	cheap := CandidateScore{
		Params:    model.Params{model.NFactors: 2, model.NEpochs: 10},
		ValidRMSE: 0.5,
	}
	wide := CandidateScore{
		Params:    model.Params{model.NFactors: 8, model.NEpochs: 10},
		ValidRMSE: 0.5,
	}
	long := CandidateScore{
		Params:    model.Params{model.NFactors: 2, model.NEpochs: 50},
		ValidRMSE: 0.5,
	}
	better := CandidateScore{
		Params:    model.Params{model.NFactors: 8, model.NEpochs: 50},
		ValidRMSE: 0.4,
	}
	// lower validation error always wins
	assert.True(t, cheaperOnTies(better, cheap))
	assert.False(t, cheaperOnTies(cheap, better))
	// equal error prefers fewer factors, then fewer iterations
	assert.True(t, cheaperOnTies(cheap, wide))
	assert.True(t, cheaperOnTies(cheap, long))
	assert.False(t, cheaperOnTies(long, cheap))
}

func TestGridSearchCV(t *testing.T) {
	ds := NewDataSet(false)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			require.NoError(t, ds.AddRelation(rowId(i), colId(j), 1))
		}
	}
	grid := model.ParamsGrid{
		model.NFactors:    {2, 4},
		model.Reg:         {0.01, 0.1},
		model.NEpochs:     {10},
		model.RandomState: {int64(0)},
	}
	result, err := GridSearchCV(ds, grid, 0.1, 42, NewFitConfig().SetJobs(1))
	require.NoError(t, err)
	assert.Len(t, result.Scores, grid.NumCombinations())
	require.NotNil(t, result.BestModel)
}
