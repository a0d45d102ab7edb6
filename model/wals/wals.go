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

// Package wals implements weighted alternating least squares over an
// implicit-feedback interaction matrix, hyper-parameter grid search with a
// held-out validation split, and a scorer that recommends target entities
// from trained embeddings.
package wals

import (
	"io"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/egesia1/Skill-Recommendation-System/base"
	"github.com/egesia1/Skill-Recommendation-System/base/encoding"
	"github.com/egesia1/Skill-Recommendation-System/base/log"
	"github.com/egesia1/Skill-Recommendation-System/base/parallel"
	"github.com/egesia1/Skill-Recommendation-System/model"
)

// FitConfig holds runtime options of a training run, as opposed to
// hyper-parameters which determine the numeric trajectory.
type FitConfig struct {
	Jobs    int // number of solver workers
	Verbose int // log every n iterations
}

// NewFitConfig creates a config with default options.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 1,
	}
}

// SetJobs sets the number of solver workers.
func (config *FitConfig) SetJobs(nJobs int) *FitConfig {
	config.Jobs = nJobs
	return config
}

// SetVerbose sets the logging period in iterations.
func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

// LoadDefaultIfNil returns default options if config is nil.
func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// WALS is weighted regularized matrix factorization for implicit feedback,
// solved by alternating least squares. Observed entries are regressed toward
// target 1 under their confidence weight, unobserved entries toward 0 under
// a small uniform confidence. The uniform and value-derived confidence
// policies share this solver; they differ only in how the matrix weights
// were assigned.
//
// Hyper-parameters:
//
//	NFactors    - The number of latent factors. Default is 50.
//	NEpochs     - The maximum number of iterations. Default is 15.
//	Reg         - The regularization strength (lambda). Default is 0.1.
//	Alpha       - The confidence weight for unobserved entries (w0). Default is 0.01.
//	Tolerance   - Relative train error improvement below which training stops. Default is 1e-4.
//	InitMean    - The mean of initial latent factors. Default is 0.
//	InitStdDev  - The standard deviation of initial latent factors. Default is 0.1.
//	RandomState - The random seed. Default is 0.
type WALS struct {
	model.BaseModel
	// model parameters
	RowIndex  *base.Index
	ColIndex  *base.Index
	RowFactor *mat.Dense // U, one row per context entity
	ColFactor *mat.Dense // V, one row per target entity
	// History records train RMSE per iteration. History[0] is measured
	// before the first iteration.
	History []float64
	// Weighted mirrors the confidence policy of the train matrix.
	Weighted bool
	// hyper parameters
	nFactors   int
	nEpochs    int
	reg        float64
	alpha      float64
	tolerance  float64
	initMean   float64
	initStdDev float64
}

// NewWALS creates a WALS model.
func NewWALS(params model.Params) *WALS {
	w := new(WALS)
	w.SetParams(params)
	return w
}

// SetParams sets hyper-parameters of the WALS model.
func (w *WALS) SetParams(params model.Params) {
	w.BaseModel.SetParams(params)
	w.nFactors = w.Params.GetInt(model.NFactors, 50)
	w.nEpochs = w.Params.GetInt(model.NEpochs, 15)
	w.reg = w.Params.GetFloat64(model.Reg, 0.1)
	w.alpha = w.Params.GetFloat64(model.Alpha, 0.01)
	w.tolerance = w.Params.GetFloat64(model.Tolerance, 1e-4)
	w.initMean = w.Params.GetFloat64(model.InitMean, 0)
	w.initStdDev = w.Params.GetFloat64(model.InitStdDev, 0.1)
}

// validate rejects malformed hyper-parameters before any computation.
func (w *WALS) validate() error {
	if w.nFactors < 1 {
		return errors.Annotatef(ErrInvalidConfig, "NFactors must be at least 1, got %v", w.nFactors)
	}
	if w.nEpochs < 1 {
		return errors.Annotatef(ErrInvalidConfig, "NEpochs must be at least 1, got %v", w.nEpochs)
	}
	if w.reg < 0 {
		return errors.Annotatef(ErrInvalidConfig, "Reg must be non-negative, got %v", w.reg)
	}
	if w.alpha < 0 {
		return errors.Annotatef(ErrInvalidConfig, "Alpha must be non-negative, got %v", w.alpha)
	}
	if w.tolerance < 0 {
		return errors.Annotatef(ErrInvalidConfig, "Tolerance must be non-negative, got %v", w.tolerance)
	}
	return nil
}

// Clear model weights.
func (w *WALS) Clear() {
	w.RowIndex = nil
	w.ColIndex = nil
	w.RowFactor = nil
	w.ColFactor = nil
	w.History = nil
}

// Invalid reports whether the model carries no trained weights.
func (w *WALS) Invalid() bool {
	return w == nil ||
		w.RowIndex == nil ||
		w.ColIndex == nil ||
		w.RowFactor == nil ||
		w.ColFactor == nil
}

// Init draws initial factors from a normal distribution using the seeded
// generator, so a fixed RandomState reproduces the trajectory bit for bit.
func (w *WALS) Init(trainSet *DataSet) {
	w.RowFactor = mat.NewDense(trainSet.RowCount(), w.nFactors,
		w.GetRandomGenerator().NormalVector64(trainSet.RowCount()*w.nFactors, w.initMean, w.initStdDev))
	w.ColFactor = mat.NewDense(trainSet.ColCount(), w.nFactors,
		w.GetRandomGenerator().NormalVector64(trainSet.ColCount()*w.nFactors, w.initMean, w.initStdDev))
	w.RowIndex = trainSet.RowIndex
	w.ColIndex = trainSet.ColIndex
	w.Weighted = trainSet.Weighted
}

// Fit trains the model on an interaction matrix. It returns the per
// iteration train RMSE history, also kept in History. Training stops early
// once the relative improvement falls below Tolerance.
func (w *WALS) Fit(trainSet *DataSet, config *FitConfig) ([]float64, error) {
	config = config.LoadDefaultIfNil()
	if err := w.validate(); err != nil {
		return nil, err
	}
	if trainSet == nil || trainSet.Count() == 0 {
		return nil, errors.Annotate(ErrInsufficientData, "interaction matrix is empty")
	}
	log.Logger().Info("fit wals",
		zap.Int("n_rows", trainSet.RowCount()),
		zap.Int("n_cols", trainSet.ColCount()),
		zap.Int("n_relations", trainSet.Count()),
		zap.Bool("weighted", trainSet.Weighted),
		zap.Any("params", w.GetParams()),
		zap.Any("config", config))
	w.Init(trainSet)
	// per-worker scratch buffers
	a := make([]*mat.SymDense, config.Jobs)
	b := make([]*mat.VecDense, config.Jobs)
	x := make([]*mat.VecDense, config.Jobs)
	chol := make([]*mat.Cholesky, config.Jobs)
	for i := 0; i < config.Jobs; i++ {
		a[i] = mat.NewSymDense(w.nFactors, nil)
		b[i] = mat.NewVecDense(w.nFactors, nil)
		x[i] = mat.NewVecDense(w.nFactors, nil)
		chol[i] = &mat.Cholesky{}
	}
	gram := mat.NewSymDense(w.nFactors, nil)
	w.History = make([]float64, 0, w.nEpochs+1)
	w.History = append(w.History, RMSE(trainSet, w.RowFactor, w.ColFactor, trainSet.Weighted, config.Jobs))
	log.Logger().Debug("initial error", zap.Float64("rmse", w.History[0]))
	trainStart := time.Now()
	for epoch := 1; epoch <= w.nEpochs; epoch++ {
		fitStart := time.Now()
		// Fix V, recompute all rows of U. The gram matrix and the column
		// factors are frozen until every row is solved.
		w.gramPlusReg(gram, w.ColFactor)
		err := parallel.Parallel(trainSet.RowCount(), config.Jobs, func(workerId, rowIndex int) error {
			return w.solve(RowSide, rowIndex, trainSet.RowFeedback[rowIndex], trainSet.RowWeights[rowIndex],
				gram, w.ColFactor, w.RowFactor, a[workerId], b[workerId], x[workerId], chol[workerId])
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		// Fix U, recompute all rows of V.
		w.gramPlusReg(gram, w.RowFactor)
		err = parallel.Parallel(trainSet.ColCount(), config.Jobs, func(workerId, colIndex int) error {
			return w.solve(ColumnSide, colIndex, trainSet.ColFeedback[colIndex], trainSet.ColWeights[colIndex],
				gram, w.RowFactor, w.ColFactor, a[workerId], b[workerId], x[workerId], chol[workerId])
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		fitTime := time.Since(fitStart)
		trainRMSE := RMSE(trainSet, w.RowFactor, w.ColFactor, trainSet.Weighted, config.Jobs)
		w.History = append(w.History, trainRMSE)
		if epoch%config.Verbose == 0 || epoch == w.nEpochs {
			log.Logger().Debug("fit wals",
				zap.Int("epoch", epoch),
				zap.Int("n_epochs", w.nEpochs),
				zap.String("fit_time", fitTime.String()),
				zap.Float64("rmse", trainRMSE))
		}
		if converged(w.History, w.tolerance) {
			log.Logger().Info("converged",
				zap.Int("epoch", epoch),
				zap.Float64("rmse", trainRMSE))
			break
		}
	}
	log.Logger().Info("fit wals complete",
		zap.String("train_time", time.Since(trainStart).String()),
		zap.Float64("rmse", w.History[len(w.History)-1]))
	return w.History, nil
}

// gramPlusReg computes alpha * X^T X + reg * I into dst. The product covers
// every unobserved entry at uniform confidence; per-entity corrections for
// observed entries are applied in solve.
func (w *WALS) gramPlusReg(dst *mat.SymDense, factor *mat.Dense) {
	dst.SymOuterK(w.alpha, factor.T())
	for i := 0; i < w.nFactors; i++ {
		dst.SetSym(i, i, dst.At(i, i)+w.reg)
	}
}

// solve builds and solves the normal equations of one entity:
//
//	A = w0*G + sum_{j in Obs} (w_j - w0) x_j x_j^T + reg*I
//	b = sum_{j in Obs} w_j x_j
//
// where G is the gram matrix of the fixed side. The correction form makes a
// half-step O((|Obs|+n)*k^2) instead of summing every unobserved entry. A is
// symmetric positive definite for reg > 0, so a Cholesky factorization is
// used; a failed factorization reports the entity that produced the
// singular system. An entity without observations and w0 = 0 reduces to
// reg*I * x = 0, embedding it exactly at the origin.
func (w *WALS) solve(side Side, index int, feedback []int32, weights []float64,
	gram *mat.SymDense, fixed, update *mat.Dense,
	a *mat.SymDense, b, x *mat.VecDense, chol *mat.Cholesky) error {
	a.CopySym(gram)
	b.Zero()
	for t, j := range feedback {
		v := fixed.RowView(int(j))
		a.SymRankOne(a, weights[t]-w.alpha, v)
		b.AddScaledVec(b, weights[t], v)
	}
	if ok := chol.Factorize(a); !ok {
		return &IllConditionedError{Side: side, Index: index}
	}
	if err := chol.SolveVecTo(x, b); err != nil {
		return &IllConditionedError{Side: side, Index: index}
	}
	update.SetRow(index, x.RawVector().Data)
	return nil
}

// Predict the score of a (context, target) identifier pair.
func (w *WALS) Predict(rowId, colId string) float64 {
	rowIndex := w.RowIndex.ToNumber(rowId)
	colIndex := w.ColIndex.ToNumber(colId)
	if rowIndex == base.NotId {
		log.Logger().Info("unknown row", zap.String("row_id", rowId))
		return 0
	}
	if colIndex == base.NotId {
		log.Logger().Info("unknown column", zap.String("col_id", colId))
		return 0
	}
	return w.internalPredict(rowIndex, colIndex)
}

func (w *WALS) internalPredict(rowIndex, colIndex int32) float64 {
	return mat.Dot(w.RowFactor.RowView(int(rowIndex)), w.ColFactor.RowView(int(colIndex)))
}

// Marshal writes the trained model into a byte stream: hyper-parameters,
// both vocabularies and both factor matrices. The stream is an explicit
// structured record, not a language-specific blob.
func (w *WALS) Marshal(writer io.Writer) error {
	if err := encoding.WriteGob(writer, w.Params); err != nil {
		return errors.Trace(err)
	}
	if err := base.MarshalIndex(writer, w.RowIndex); err != nil {
		return errors.Trace(err)
	}
	if err := base.MarshalIndex(writer, w.ColIndex); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(writer, w.Weighted); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteDense(writer, w.RowFactor); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteDense(writer, w.ColFactor))
}

// Unmarshal reads a trained model from a byte stream.
func (w *WALS) Unmarshal(reader io.Reader) error {
	var params model.Params
	if err := encoding.ReadGob(reader, &params); err != nil {
		return errors.Trace(err)
	}
	w.SetParams(params)
	var err error
	if w.RowIndex, err = base.UnmarshalIndex(reader); err != nil {
		return errors.Trace(err)
	}
	if w.ColIndex, err = base.UnmarshalIndex(reader); err != nil {
		return errors.Trace(err)
	}
	if err = encoding.ReadGob(reader, &w.Weighted); err != nil {
		return errors.Trace(err)
	}
	if w.RowFactor, err = encoding.ReadDense(reader); err != nil {
		return errors.Trace(err)
	}
	w.ColFactor, err = encoding.ReadDense(reader)
	return errors.Trace(err)
}

// UnmarshalModel reads a trained model from a byte stream.
func UnmarshalModel(reader io.Reader) (*WALS, error) {
	w := new(WALS)
	if err := w.Unmarshal(reader); err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}
