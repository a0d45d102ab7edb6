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

// skillrec trains a weighted matrix factorization over an occupation-skill
// matrix and ranks skills against a profile of known skills.
//
// Train from a CSV of occupation,skill[,weight] rows:
//
//	skillrec --train relations.csv --model model.bin --weighted
//
// Recommend against a trained model:
//
//	skillrec --model model.bin --recommend skill-a,skill-b --top-k 10
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/egesia1/Skill-Recommendation-System/base/log"
	"github.com/egesia1/Skill-Recommendation-System/model"
	"github.com/egesia1/Skill-Recommendation-System/model/wals"
)

func main() {
	flagSet := pflag.NewFlagSet("skillrec", pflag.ExitOnError)
	trainPath := flagSet.String("train", "", "path of the relation CSV (occupation,skill[,weight])")
	modelPath := flagSet.String("model", "model.bin", "path of the model file")
	weighted := flagSet.Bool("weighted", false, "treat the third CSV column as confidence weights")
	recommend := flagSet.String("recommend", "", "comma separated known skills to recommend against")
	topK := flagSet.Int("top-k", 10, "number of recommendations, 0 for all")
	nFactors := flagSet.Int("factors", 50, "number of latent factors")
	nEpochs := flagSet.Int("epochs", 15, "maximum number of iterations")
	reg := flagSet.Float64("reg", 0.1, "regularization strength")
	alpha := flagSet.Float64("alpha", 0.01, "confidence weight for unobserved entries")
	tolerance := flagSet.Float64("tolerance", 1e-4, "relative improvement below which training stops")
	seed := flagSet.Int64("seed", 0, "random seed")
	jobs := flagSet.Int("jobs", 1, "number of solver workers")
	debug := flagSet.Bool("debug", false, "use debug logging")
	log.AddFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	log.SetLogger(flagSet, *debug)

	if *trainPath != "" {
		params := model.Params{
			model.NFactors:    *nFactors,
			model.NEpochs:     *nEpochs,
			model.Reg:         *reg,
			model.Alpha:       *alpha,
			model.Tolerance:   *tolerance,
			model.RandomState: *seed,
		}
		if err := train(*trainPath, *modelPath, *weighted, params, *jobs); err != nil {
			log.Logger().Fatal("failed to train model", zap.Error(err))
		}
		return
	}
	if *recommend != "" {
		if err := rank(*modelPath, strings.Split(*recommend, ","), *topK); err != nil {
			log.Logger().Fatal("failed to recommend skills", zap.Error(err))
		}
		return
	}
	flagSet.Usage()
}

func train(dataPath, modelPath string, weighted bool, params model.Params, jobs int) error {
	dataSet, err := loadRelations(dataPath, weighted)
	if err != nil {
		return errors.Trace(err)
	}
	w := wals.NewWALS(params)
	if _, err = w.Fit(dataSet, wals.NewFitConfig().SetJobs(jobs)); err != nil {
		return errors.Trace(err)
	}
	file, err := os.Create(modelPath)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	if err = w.Marshal(file); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("model saved", zap.String("path", modelPath))
	return nil
}

func rank(modelPath string, known []string, topK int) error {
	file, err := os.Open(modelPath)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	w, err := wals.UnmarshalModel(file)
	if err != nil {
		return errors.Trace(err)
	}
	recommendations, dropped, err := w.Recommend(known, topK)
	if err != nil {
		return errors.Trace(err)
	}
	if dropped > 0 {
		log.Logger().Warn("unknown skills in profile", zap.Int("dropped", dropped))
	}
	for _, r := range recommendations {
		fmt.Printf("%v\t%v\n", r.Id, r.Score)
	}
	return nil
}

func loadRelations(path string, weighted bool) (*wals.DataSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Trace(err)
	}
	dataSet := wals.NewDataSet(weighted)
	for i, record := range records {
		if len(record) < 2 {
			return nil, errors.Errorf("line %d: expect occupation,skill[,weight], got %v", i+1, record)
		}
		weight := 1.0
		if weighted && len(record) > 2 {
			if weight, err = strconv.ParseFloat(record[2], 64); err != nil {
				return nil, errors.Annotatef(err, "line %d", i+1)
			}
		}
		if err = dataSet.AddRelation(record[0], record[1], weight); err != nil {
			return nil, errors.Annotatef(err, "line %d", i+1)
		}
	}
	log.Logger().Info("loaded relations",
		zap.String("path", path),
		zap.Int("n_relations", dataSet.Count()),
		zap.Int("n_occupations", dataSet.RowCount()),
		zap.Int("n_skills", dataSet.ColCount()))
	return dataSet, nil
}
