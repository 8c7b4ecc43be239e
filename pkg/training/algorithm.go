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

// Package training configures and launches managed training jobs and tracks
// their handles. The actual training runs inside the external platform; this
// package only submits work and queries its state.
package training

import (
	"github.com/pkg/errors"
)

// Algorithm identifies one of the supported off-the-shelf algorithms.
type Algorithm string

const (
	// AlgorithmXGBoost is gradient-boosted trees regression.
	AlgorithmXGBoost Algorithm = "gradient-boosted-trees"

	// AlgorithmLinearLearner is linear regression.
	AlgorithmLinearLearner Algorithm = "linear-regressor"
)

// ErrUnsupportedAlgorithm reports an algorithm identifier outside the
// supported set. It fires before any remote call.
var ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

// Validate checks the algorithm identifier against the supported set.
func (a Algorithm) Validate() error {
	switch a {
	case AlgorithmXGBoost, AlgorithmLinearLearner:
		return nil
	}

	return errors.Wrapf(ErrUnsupportedAlgorithm, "%s", a)
}

// String returns the algorithm identifier.
func (a Algorithm) String() string {
	return string(a)
}
