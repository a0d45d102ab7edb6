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
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/egesia1/Skill-Recommendation-System/base/parallel"
)

// RMSE measures reconstruction error over the observed entries only, each
// regressed toward target 1. Under a weighted matrix every squared residual
// is scaled by its confidence weight and the sum is normalized by the total
// weight, so heavy entries dominate the error the same way they dominate
// the loss being minimized. Under a uniform matrix it is the plain RMSE.
func RMSE(dataSet *DataSet, rowFactor, colFactor *mat.Dense, weighted bool, nJobs int) float64 {
	count := dataSet.Count()
	if count == 0 {
		return 0
	}
	sums := make([]float64, nJobs)
	norms := make([]float64, nJobs)
	_ = parallel.BatchParallel(count, nJobs, 128, func(workerId, beginJobId, endJobId int) error {
		for position := beginJobId; position < endJobId; position++ {
			rowIndex, colIndex, weight := dataSet.Get(position)
			residual := 1 - mat.Dot(rowFactor.RowView(int(rowIndex)), colFactor.RowView(int(colIndex)))
			if weighted {
				sums[workerId] += weight * residual * residual
				norms[workerId] += weight
			} else {
				sums[workerId] += residual * residual
				norms[workerId]++
			}
		}
		return nil
	})
	var sum, norm float64
	for workerId := 0; workerId < nJobs; workerId++ {
		sum += sums[workerId]
		norm += norms[workerId]
	}
	if norm == 0 {
		return 0
	}
	return math.Sqrt(sum / norm)
}

// converged reports whether the latest iteration improved the error by less
// than tolerance relative to the previous value. It never fires before one
// full iteration has run, and a degenerate previous error of zero counts as
// converged since no further improvement is possible.
func converged(history []float64, tolerance float64) bool {
	if len(history) < 2 {
		return false
	}
	prev := history[len(history)-2]
	cur := history[len(history)-1]
	if prev == 0 {
		return true
	}
	return prev-cur < tolerance*prev
}
