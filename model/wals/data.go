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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/egesia1/Skill-Recommendation-System/base"
	"github.com/egesia1/Skill-Recommendation-System/base/log"
)

// DataSet is a sparse interaction matrix between a context vocabulary
// (rows, e.g. occupations) and a target vocabulary (columns, e.g. skills).
// Every stored entry carries a positive confidence weight. Absence of an
// entry means "unobserved", never a zero weight. Relations are kept three
// ways: as parallel triple arrays for splitting and error reductions, and
// as per-row and per-column adjacency with aligned weights for the
// half-step solves.
type DataSet struct {
	RowIndex *base.Index
	ColIndex *base.Index
	// observed (row, col, weight) triples
	FeedbackRows    []int32
	FeedbackCols    []int32
	FeedbackWeights []float64
	// adjacency, indexed by dense row/column
	RowFeedback [][]int32
	RowWeights  [][]float64
	ColFeedback [][]int32
	ColWeights  [][]float64
	// Weighted records the confidence policy used to populate the matrix:
	// false for uniform presence weights, true for value-derived weights.
	// It selects the RMSE weighting rule downstream.
	Weighted bool
	// (row, col) -> triple position, resolves duplicates last-write-wins
	positions map[int64]int
}

// NewDataSet creates an empty interaction matrix. weighted declares the
// confidence policy of the weights to come.
func NewDataSet(weighted bool) *DataSet {
	ds := new(DataSet)
	ds.RowIndex = base.NewMapIndex()
	ds.ColIndex = base.NewMapIndex()
	ds.RowFeedback = make([][]int32, 0)
	ds.RowWeights = make([][]float64, 0)
	ds.ColFeedback = make([][]int32, 0)
	ds.ColWeights = make([][]float64, 0)
	ds.Weighted = weighted
	ds.positions = make(map[int64]int)
	return ds
}

// shareIndex creates an empty matrix over existing vocabularies. Used by the
// splitter so train and validation halves keep identical index bounds,
// including degree-zero entities.
func shareIndex(rowIndex, colIndex *base.Index, weighted bool) *DataSet {
	ds := NewDataSet(weighted)
	ds.RowIndex = rowIndex
	ds.ColIndex = colIndex
	ds.RowFeedback = makeAdjacency(int(rowIndex.Len()))
	ds.RowWeights = makeWeights(int(rowIndex.Len()))
	ds.ColFeedback = makeAdjacency(int(colIndex.Len()))
	ds.ColWeights = makeWeights(int(colIndex.Len()))
	return ds
}

func makeAdjacency(n int) [][]int32 {
	x := make([][]int32, n)
	for i := range x {
		x[i] = make([]int32, 0)
	}
	return x
}

func makeWeights(n int) [][]float64 {
	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, 0)
	}
	return x
}

// AddRow registers a context identifier, even if it never appears in a
// relation. Degree-zero rows stay in the vocabulary and are embedded at the
// origin when unobserved confidence is zero.
func (ds *DataSet) AddRow(rowId string) {
	ds.RowIndex.Add(rowId)
	rowIndex := ds.RowIndex.ToNumber(rowId)
	for int(rowIndex) >= len(ds.RowFeedback) {
		ds.RowFeedback = append(ds.RowFeedback, make([]int32, 0))
		ds.RowWeights = append(ds.RowWeights, make([]float64, 0))
	}
}

// AddCol registers a target identifier, even if it never appears in a
// relation.
func (ds *DataSet) AddCol(colId string) {
	ds.ColIndex.Add(colId)
	colIndex := ds.ColIndex.ToNumber(colId)
	for int(colIndex) >= len(ds.ColFeedback) {
		ds.ColFeedback = append(ds.ColFeedback, make([]int32, 0))
		ds.ColWeights = append(ds.ColWeights, make([]float64, 0))
	}
}

// AddRelation stores an observed relation with its confidence weight.
// Unseen identifiers are registered on the fly. A repeated (row, col) pair
// overwrites the previous weight.
func (ds *DataSet) AddRelation(rowId, colId string, weight float64) error {
	if weight <= 0 {
		return errors.Annotatef(ErrInvalidConfig,
			"weight must be positive for relation (%v, %v), got %v", rowId, colId, weight)
	}
	ds.AddRow(rowId)
	ds.AddCol(colId)
	ds.addTriple(ds.RowIndex.ToNumber(rowId), ds.ColIndex.ToNumber(colId), weight)
	return nil
}

func (ds *DataSet) addTriple(rowIndex, colIndex int32, weight float64) {
	key := int64(rowIndex)<<32 | int64(colIndex)
	if pos, exist := ds.positions[key]; exist {
		// last write wins
		ds.FeedbackWeights[pos] = weight
		for t, j := range ds.RowFeedback[rowIndex] {
			if j == colIndex {
				ds.RowWeights[rowIndex][t] = weight
			}
		}
		for t, i := range ds.ColFeedback[colIndex] {
			if i == rowIndex {
				ds.ColWeights[colIndex][t] = weight
			}
		}
		return
	}
	ds.positions[key] = len(ds.FeedbackRows)
	ds.FeedbackRows = append(ds.FeedbackRows, rowIndex)
	ds.FeedbackCols = append(ds.FeedbackCols, colIndex)
	ds.FeedbackWeights = append(ds.FeedbackWeights, weight)
	ds.RowFeedback[rowIndex] = append(ds.RowFeedback[rowIndex], colIndex)
	ds.RowWeights[rowIndex] = append(ds.RowWeights[rowIndex], weight)
	ds.ColFeedback[colIndex] = append(ds.ColFeedback[colIndex], rowIndex)
	ds.ColWeights[colIndex] = append(ds.ColWeights[colIndex], weight)
}

// Count returns the number of observed entries.
func (ds *DataSet) Count() int {
	if len(ds.FeedbackRows) != len(ds.FeedbackCols) ||
		len(ds.FeedbackRows) != len(ds.FeedbackWeights) {
		panic("triple arrays out of sync")
	}
	return len(ds.FeedbackRows)
}

// RowCount returns the size of the context vocabulary.
func (ds *DataSet) RowCount() int {
	return int(ds.RowIndex.Len())
}

// ColCount returns the size of the target vocabulary.
func (ds *DataSet) ColCount() int {
	return int(ds.ColIndex.Len())
}

// Get returns the i-th observed entry as (row index, col index, weight).
func (ds *DataSet) Get(i int) (int32, int32, float64) {
	return ds.FeedbackRows[i], ds.FeedbackCols[i], ds.FeedbackWeights[i]
}

// SplitRelations partitions the observed entries into a train matrix and a
// validation matrix by uniform sampling without replacement. Both halves
// share the vocabularies so index bounds match. The split is deterministic
// for a fixed seed.
func (ds *DataSet) SplitRelations(validFrac float64, seed int64) (*DataSet, *DataSet, error) {
	if ds.Count() == 0 {
		return nil, nil, errors.Annotate(ErrInsufficientData, "interaction matrix is empty")
	}
	numValid := int(float64(ds.Count()) * validFrac)
	if numValid == 0 {
		return nil, nil, errors.Annotatef(ErrInsufficientData,
			"validation fraction %v yields no held-out entries from %v", validFrac, ds.Count())
	}
	rng := base.NewRandomGenerator(seed)
	validSet := mapset.NewSet[int](rng.Sample(0, ds.Count(), numValid)...)
	train := shareIndex(ds.RowIndex, ds.ColIndex, ds.Weighted)
	valid := shareIndex(ds.RowIndex, ds.ColIndex, ds.Weighted)
	for i := 0; i < ds.Count(); i++ {
		rowIndex, colIndex, weight := ds.Get(i)
		if validSet.Contains(i) {
			valid.addTriple(rowIndex, colIndex, weight)
		} else {
			train.addTriple(rowIndex, colIndex, weight)
		}
	}
	log.Logger().Info("split relations",
		zap.Int("train_size", train.Count()),
		zap.Int("validation_size", valid.Count()),
		zap.Float64("validation_fraction", validFrac))
	return train, valid, nil
}
