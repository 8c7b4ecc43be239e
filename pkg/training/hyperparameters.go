/*
 *     Copyright 2023 The Urchin Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package training

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
)

// Hyperparameters is the per-algorithm parameter schema. Each algorithm has
// its own variant; adding an algorithm means adding a variant here, not
// widening an untyped map.
type Hyperparameters interface {
	// Algorithm returns the algorithm the schema belongs to.
	Algorithm() Algorithm

	// Map renders the schema as the string mapping the training service
	// consumes.
	Map() map[string]string

	// Validate checks schema-level constraints before submission.
	Validate() error
}

// XGBoostHyperparameters is the gradient-boosted trees schema.
type XGBoostHyperparameters struct {
	// MaxDepth is maximum tree depth.
	MaxDepth int

	// Eta is the learning rate.
	Eta float64

	// Gamma is the minimum loss reduction gate for a further split.
	Gamma float64

	// MinChildWeight is the minimum instance weight sum in a child.
	MinChildWeight int

	// Subsample is the row subsample fraction per round.
	Subsample float64

	// Objective is the learning objective.
	Objective string

	// EarlyStoppingRounds stops training when the validation metric has not
	// improved for this many rounds.
	EarlyStoppingRounds int

	// NumRound is the boosting round count. The configured default of 1 is
	// a smoke-test value carried over from the reference configuration;
	// callers tune it per run.
	NumRound int
}

// NewXGBoostHyperparameters returns the reference defaults.
func NewXGBoostHyperparameters() *XGBoostHyperparameters {
	return &XGBoostHyperparameters{
		MaxDepth:            5,
		Eta:                 0.2,
		Gamma:               4,
		MinChildWeight:      6,
		Subsample:           0.7,
		Objective:           "reg:squarederror",
		EarlyStoppingRounds: 10,
		NumRound:            1,
	}
}

// Algorithm returns the algorithm the schema belongs to.
func (h *XGBoostHyperparameters) Algorithm() Algorithm {
	return AlgorithmXGBoost
}

// Map renders the schema as the string mapping the training service consumes.
func (h *XGBoostHyperparameters) Map() map[string]string {
	return map[string]string{
		"max_depth":             strconv.Itoa(h.MaxDepth),
		"eta":                   strconv.FormatFloat(h.Eta, 'f', -1, 64),
		"gamma":                 strconv.FormatFloat(h.Gamma, 'f', -1, 64),
		"min_child_weight":      strconv.Itoa(h.MinChildWeight),
		"subsample":             strconv.FormatFloat(h.Subsample, 'f', -1, 64),
		"objective":             h.Objective,
		"early_stopping_rounds": strconv.Itoa(h.EarlyStoppingRounds),
		"num_round":             strconv.Itoa(h.NumRound),
	}
}

// Validate checks schema-level constraints before submission.
func (h *XGBoostHyperparameters) Validate() error {
	if h.MaxDepth <= 0 {
		return errors.New("max_depth must be positive")
	}

	if h.Eta <= 0 || h.Eta > 1 {
		return errors.New("eta must be in (0, 1]")
	}

	if h.Subsample <= 0 || h.Subsample > 1 {
		return errors.New("subsample must be in (0, 1]")
	}

	if h.NumRound <= 0 {
		return errors.New("num_round must be positive")
	}

	return nil
}

// LinearLearnerHyperparameters is the linear regression schema.
type LinearLearnerHyperparameters struct {
	// FeatureDim is the input feature dimensionality, derived from the
	// training split.
	FeatureDim int

	// Predictor is the predictor mode, always regression here.
	Predictor string

	// MiniBatchSize is the mini-batch size.
	MiniBatchSize int
}

// NewLinearLearnerHyperparameters returns the regression defaults for the
// given feature dimensionality.
func NewLinearLearnerHyperparameters(featureDim int) *LinearLearnerHyperparameters {
	return &LinearLearnerHyperparameters{
		FeatureDim:    featureDim,
		Predictor:     "regressor",
		MiniBatchSize: 100,
	}
}

// Algorithm returns the algorithm the schema belongs to.
func (h *LinearLearnerHyperparameters) Algorithm() Algorithm {
	return AlgorithmLinearLearner
}

// Map renders the schema as the string mapping the training service consumes.
func (h *LinearLearnerHyperparameters) Map() map[string]string {
	return map[string]string{
		"feature_dim":     strconv.Itoa(h.FeatureDim),
		"predictor_type":  h.Predictor,
		"mini_batch_size": strconv.Itoa(h.MiniBatchSize),
	}
}

// Validate checks schema-level constraints before submission.
func (h *LinearLearnerHyperparameters) Validate() error {
	if h.FeatureDim <= 0 {
		return errors.New("feature_dim must be positive")
	}

	if h.Predictor != "regressor" {
		return errors.Errorf("predictor type %s is not supported", h.Predictor)
	}

	if h.MiniBatchSize <= 0 {
		return errors.New("mini_batch_size must be positive")
	}

	return nil
}

// BuildHyperparameters selects the schema variant for the algorithm. The
// algorithm identifier is validated before anything else, so an unsupported
// identifier never reaches a remote call.
func BuildHyperparameters(algorithm Algorithm, train *dataset.Split) (Hyperparameters, error) {
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	switch algorithm {
	case AlgorithmXGBoost:
		return NewXGBoostHyperparameters(), nil
	case AlgorithmLinearLearner:
		if train == nil {
			return nil, errors.New("linear regression needs the training split to derive feature_dim")
		}
		return NewLinearLearnerHyperparameters(train.FeatureDim()), nil
	}

	// Unreachable, Validate covers the enum.
	return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%s", algorithm)
}
