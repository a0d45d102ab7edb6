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
)

func TestDataSet_AddRelation(t *testing.T) {
	ds := NewDataSet(true)
	assert.NoError(t, ds.AddRelation("chef", "cooking", 3))
	assert.NoError(t, ds.AddRelation("chef", "baking", 1))
	assert.NoError(t, ds.AddRelation("baker", "baking", 5))
	assert.Equal(t, 3, ds.Count())
	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, 2, ds.ColCount())
	// adjacency mirrors the triples
	chef := ds.RowIndex.ToNumber("chef")
	baking := ds.ColIndex.ToNumber("baking")
	assert.Equal(t, []int32{0, 1}, ds.RowFeedback[chef])
	assert.Equal(t, []float64{3, 1}, ds.RowWeights[chef])
	assert.Equal(t, []int32{0, 1}, ds.ColFeedback[baking])
	assert.Equal(t, []float64{1, 5}, ds.ColWeights[baking])
	// triples readable by position
	rowIndex, colIndex, weight := ds.Get(0)
	assert.Equal(t, chef, rowIndex)
	assert.Equal(t, int32(0), colIndex)
	assert.Equal(t, 3.0, weight)
}

func TestDataSet_DuplicateRelation(t *testing.T) {
	ds := NewDataSet(true)
	assert.NoError(t, ds.AddRelation("chef", "cooking", 3))
	assert.NoError(t, ds.AddRelation("chef", "baking", 1))
	// last write wins without growing the matrix
	assert.NoError(t, ds.AddRelation("chef", "cooking", 7))
	assert.Equal(t, 2, ds.Count())
	_, _, weight := ds.Get(0)
	assert.Equal(t, 7.0, weight)
	chef := ds.RowIndex.ToNumber("chef")
	cooking := ds.ColIndex.ToNumber("cooking")
	assert.Equal(t, []float64{7, 1}, ds.RowWeights[chef])
	assert.Equal(t, []float64{7}, ds.ColWeights[cooking])
}

func TestDataSet_InvalidWeight(t *testing.T) {
	ds := NewDataSet(true)
	assert.ErrorIs(t, ds.AddRelation("chef", "cooking", 0), ErrInvalidConfig)
	assert.ErrorIs(t, ds.AddRelation("chef", "cooking", -1), ErrInvalidConfig)
	assert.Equal(t, 0, ds.Count())
}

func TestDataSet_ZeroDegreeEntities(t *testing.T) {
	ds := NewDataSet(false)
	ds.AddRow("hermit")
	ds.AddCol("unicycling")
	assert.NoError(t, ds.AddRelation("chef", "cooking", 1))
	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, 2, ds.ColCount())
	hermit := ds.RowIndex.ToNumber("hermit")
	assert.Empty(t, ds.RowFeedback[hermit])
}

func TestDataSet_SplitRelations(t *testing.T) {
	ds := NewDataSet(false)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			assert.NoError(t, ds.AddRelation(rowId(i), colId(j), 1))
		}
	}
	train, valid, err := ds.SplitRelations(0.2, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, valid.Count())
	assert.Equal(t, 80, train.Count())
	// both halves share the vocabularies
	assert.Same(t, ds.RowIndex, train.RowIndex)
	assert.Same(t, ds.RowIndex, valid.RowIndex)
	assert.Same(t, ds.ColIndex, train.ColIndex)
	assert.Same(t, ds.ColIndex, valid.ColIndex)
	assert.Equal(t, ds.RowCount(), train.RowCount())
	assert.Equal(t, ds.ColCount(), valid.ColCount())
	// the split is a partition of the observed entries
	seen := make(map[int64]int)
	for i := 0; i < train.Count(); i++ {
		r, c, _ := train.Get(i)
		seen[int64(r)<<32|int64(c)]++
	}
	for i := 0; i < valid.Count(); i++ {
		r, c, _ := valid.Get(i)
		seen[int64(r)<<32|int64(c)]++
	}
	assert.Len(t, seen, 100)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
	// deterministic for a fixed seed
	train2, valid2, err := ds.SplitRelations(0.2, 0)
	require.NoError(t, err)
	assert.Equal(t, train.FeedbackRows, train2.FeedbackRows)
	assert.Equal(t, train.FeedbackCols, train2.FeedbackCols)
	assert.Equal(t, valid.FeedbackRows, valid2.FeedbackRows)
	assert.Equal(t, valid.FeedbackCols, valid2.FeedbackCols)
}

func TestDataSet_SplitRelations_InsufficientData(t *testing.T) {
	ds := NewDataSet(false)
	_, _, err := ds.SplitRelations(0.2, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.NoError(t, ds.AddRelation("chef", "cooking", 1))
	_, _, err = ds.SplitRelations(0.2, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
