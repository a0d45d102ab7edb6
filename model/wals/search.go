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
	"time"

	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/egesia1/Skill-Recommendation-System/base/log"
	"github.com/egesia1/Skill-Recommendation-System/model"
)

// CandidateScore is one leaderboard entry of a hyper-parameter search.
type CandidateScore struct {
	Params     model.Params
	TrainRMSE  float64
	ValidRMSE  float64
	NumEpochs  int
	FitTime    time.Duration
	Skipped    bool
	SkipReason string
}

// SearchResult aggregates a finished hyper-parameter search. BestModel keeps
// the factors trained during the winning trial, so the winner needs no
// retraining before scoring.
type SearchResult struct {
	BestParams model.Params
	BestScore  float64
	BestIndex  int
	BestModel  *WALS
	Scores     []CandidateScore
}

// GridSearch holds out validFrac of the observed entries, trains one model
// per candidate parameter set on the remainder, and keeps the candidate with
// the lowest validation RMSE. The split is seeded, so repeated searches over
// the same matrix are identical. Candidates whose normal equations turn out
// singular are recorded on the leaderboard with a reason instead of aborting
// the search; any other error aborts. Every candidate is validated before
// the first one trains.
func GridSearch(dataSet *DataSet, candidates []model.Params, validFrac float64, seed int64, config *FitConfig) (*SearchResult, error) {
	if len(candidates) == 0 {
		return nil, errors.Annotate(ErrInvalidConfig, "no hyper-parameter candidates")
	}
	for i, params := range candidates {
		if err := NewWALS(params).validate(); err != nil {
			return nil, errors.Annotatef(err, "candidate %d", i)
		}
	}
	if dataSet == nil || dataSet.Count() == 0 {
		return nil, errors.Annotate(ErrInsufficientData, "interaction matrix is empty")
	}
	trainSet, validSet, err := dataSet.SplitRelations(validFrac, seed)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return gridSearch(trainSet, validSet, candidates, config)
}

// GridSearchCV expands a parameter grid into the cross product of its values
// and searches over them. The expansion order is deterministic, so repeated
// searches with the same seed pick the same winner.
func GridSearchCV(dataSet *DataSet, grid model.ParamsGrid, validFrac float64, seed int64, config *FitConfig) (*SearchResult, error) {
	candidates := model.ExpandGrid(grid)
	log.Logger().Info("expand parameter grid",
		zap.Int("n_candidates", len(candidates)))
	return GridSearch(dataSet, candidates, validFrac, seed, config)
}

func gridSearch(trainSet, validSet *DataSet, candidates []model.Params, config *FitConfig) (*SearchResult, error) {
	config = config.LoadDefaultIfNil()
	result := &SearchResult{
		BestIndex: -1,
		Scores:    make([]CandidateScore, 0, len(candidates)),
	}
	progress := atomic.NewInt32(0)
	searchStart := time.Now()
	for i, params := range candidates {
		w := NewWALS(params)
		fitStart := time.Now()
		history, err := w.Fit(trainSet, config)
		done := progress.Inc()
		score := CandidateScore{Params: params, FitTime: time.Since(fitStart)}
		if err != nil {
			var illErr *IllConditionedError
			if !errors.As(err, &illErr) {
				return nil, errors.Trace(err)
			}
			score.Skipped = true
			score.SkipReason = illErr.Error()
			result.Scores = append(result.Scores, score)
			log.Logger().Warn("skip candidate",
				zap.Int("candidate", i),
				zap.Any("params", params),
				zap.String("reason", illErr.Error()))
			continue
		}
		score.TrainRMSE = history[len(history)-1]
		score.NumEpochs = len(history) - 1
		score.ValidRMSE = RMSE(validSet, w.RowFactor, w.ColFactor, validSet.Weighted, config.Jobs)
		result.Scores = append(result.Scores, score)
		log.Logger().Info("grid search",
			zap.Int32("done", done),
			zap.Int("total", len(candidates)),
			zap.Any("params", params),
			zap.Float64("train_rmse", score.TrainRMSE),
			zap.Float64("valid_rmse", score.ValidRMSE))
		if result.BestIndex < 0 || cheaperOnTies(score, result.Scores[result.BestIndex]) {
			result.BestIndex = i
			result.BestScore = score.ValidRMSE
			result.BestParams = params.Copy()
			result.BestModel = w
		}
	}
	if result.BestIndex < 0 {
		return nil, errors.Annotate(ErrInsufficientData, "every candidate produced a singular system")
	}
	log.Logger().Info("grid search complete",
		zap.String("search_time", time.Since(searchStart).String()),
		zap.Any("best_params", result.BestParams),
		zap.Float64("best_valid_rmse", result.BestScore))
	return result, nil
}

// cheaperOnTies reports whether candidate a beats candidate b: lower
// validation error first, then the cheaper model, fewer factors before fewer
// iterations.
func cheaperOnTies(a, b CandidateScore) bool {
	if a.ValidRMSE != b.ValidRMSE {
		return a.ValidRMSE < b.ValidRMSE
	}
	aFactors := a.Params.GetInt(model.NFactors, 50)
	bFactors := b.Params.GetInt(model.NFactors, 50)
	if aFactors != bFactors {
		return aFactors < bFactors
	}
	return a.Params.GetInt(model.NEpochs, 15) < b.Params.GetInt(model.NEpochs, 15)
}
