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

// Package dataset materializes labeled train/validation/test splits into
// delimited text and pushes them to object storage for training.
package dataset

import (
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"
	"gonum.org/v1/gonum/mat"
)

// SplitName is one of the fixed dataset partitions.
type SplitName string

const (
	SplitTrain      SplitName = "train"
	SplitValidation SplitName = "validation"
	SplitTest       SplitName = "test"
)

// Split is an in-memory table of feature values paired with a target value
// per row. The target is kept separate so serialization can put it first.
type Split struct {
	// Name is the partition name.
	Name SplitName

	// Columns is feature column names, positional.
	Columns []string

	// Features is the row-major feature matrix.
	Features *mat.Dense

	// Target is the per-row target vector.
	Target []float64
}

// NewSplit builds a split and checks the row count invariant between the
// feature matrix and the target vector.
func NewSplit(name SplitName, columns []string, features *mat.Dense, target []float64) (*Split, error) {
	rows, cols := features.Dims()
	if rows != len(target) {
		return nil, errors.Errorf("split %s has %d feature rows but %d target values", name, rows, len(target))
	}

	if len(columns) != 0 && len(columns) != cols {
		return nil, errors.Errorf("split %s has %d feature columns but %d column names", name, cols, len(columns))
	}

	return &Split{
		Name:     name,
		Columns:  columns,
		Features: features,
		Target:   target,
	}, nil
}

// Rows returns the row count of the split.
func (s *Split) Rows() int {
	rows, _ := s.Features.Dims()
	return rows
}

// FeatureDim returns the feature column count of the split.
func (s *Split) FeatureDim() int {
	_, cols := s.Features.Dims()
	return cols
}

// FromInstances converts golearn instances into a split. The class attribute
// becomes the target; when no class attribute is set the last attribute is
// taken as the target.
func FromInstances(name SplitName, inst *base.DenseInstances) (*Split, error) {
	attributes := inst.AllAttributes()
	if len(attributes) < 2 {
		return nil, errors.Errorf("split %s needs at least one feature and one target attribute", name)
	}

	_, rows := inst.Size()

	targetAttr := attributes[len(attributes)-1]
	if classAttrs := inst.AllClassAttributes(); len(classAttrs) > 0 {
		targetAttr = classAttrs[0]
	}

	var (
		columns      []string
		featureSpecs []base.AttributeSpec
	)
	for _, attr := range attributes {
		if attr.GetName() == targetAttr.GetName() {
			continue
		}

		spec, err := inst.GetAttribute(attr)
		if err != nil {
			return nil, err
		}
		featureSpecs = append(featureSpecs, spec)
		columns = append(columns, attr.GetName())
	}

	targetSpec, err := inst.GetAttribute(targetAttr)
	if err != nil {
		return nil, err
	}

	features := mat.NewDense(rows, len(featureSpecs), nil)
	target := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j, spec := range featureSpecs {
			features.Set(i, j, base.UnpackBytesToFloat(inst.Get(spec, i)))
		}
		target[i] = base.UnpackBytesToFloat(inst.Get(targetSpec, i))
	}

	return NewSplit(name, columns, features, target)
}

// LoadCSV reads a headerless csv file with the target as the last column
// into a split.
func LoadCSV(name SplitName, path string) (*Split, error) {
	inst, err := base.ParseCSVToInstances(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	return FromInstances(name, inst)
}
