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
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/egesia1/Skill-Recommendation-System/base"
	"github.com/egesia1/Skill-Recommendation-System/base/log"
)

// Recommendation is one scored target entity.
type Recommendation struct {
	Id    string
	Score float64
}

// Recommend scores target entities against a profile of already-known
// targets. The profile embedding is the mean of the known targets' latent
// vectors; candidates are every trained target not in the profile, ranked
// by dot product with the profile. Known identifiers absent from the
// trained vocabulary are dropped and counted in the second return value.
// If every identifier is unknown, ErrNoKnownItems is returned. A topK of
// zero or less returns the full ranking.
//
// Ranking order is total: ties on score fall back to vocabulary order, so
// the same model and profile always produce the same list.
func (w *WALS) Recommend(known []string, topK int) ([]Recommendation, int, error) {
	if w.Invalid() {
		return nil, 0, errors.Annotate(ErrInvalidConfig, "model is not trained")
	}
	knownIndices := mapset.NewSet[int32]()
	dropped := 0
	for _, id := range known {
		index := w.ColIndex.ToNumber(id)
		if index == base.NotId {
			dropped++
			log.Logger().Debug("drop unknown target", zap.String("id", id))
			continue
		}
		knownIndices.Add(index)
	}
	if knownIndices.Cardinality() == 0 {
		return nil, dropped, errors.Annotatef(ErrNoKnownItems, "none of %d identifiers are in the vocabulary", len(known))
	}
	if dropped > 0 {
		log.Logger().Info("dropped unknown targets",
			zap.Int("dropped", dropped),
			zap.Int("known", knownIndices.Cardinality()))
	}
	// profile embedding: mean of known target vectors
	profile := mat.NewVecDense(w.nFactors, nil)
	for index := range knownIndices.Iter() {
		profile.AddVec(profile, w.ColFactor.RowView(int(index)))
	}
	profile.ScaleVec(1/float64(knownIndices.Cardinality()), profile)
	// score every candidate target
	type scored struct {
		index int32
		score float64
	}
	candidates := make([]scored, 0, int(w.ColIndex.Len())-knownIndices.Cardinality())
	for index := int32(0); index < w.ColIndex.Len(); index++ {
		if knownIndices.Contains(index) {
			continue
		}
		candidates = append(candidates, scored{
			index: index,
			score: mat.Dot(profile, w.ColFactor.RowView(int(index))),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})
	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return lo.Map(candidates, func(c scored, _ int) Recommendation {
		return Recommendation{Id: w.ColIndex.ToName(c.index), Score: c.score}
	}), dropped, nil
}
