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
	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
	"github.com/zhangshuiyong/urchin-train/pkg/session"
)

// ContentTypeCSV is the content type of every training channel in this
// workflow.
const ContentTypeCSV = "text/csv"

const (
	// DefaultInstanceType is the compute shape used when the caller does
	// not pin one.
	DefaultInstanceType = "ml.m4.xlarge"

	// DefaultInstanceCount is the instance count used when the caller does
	// not pin one.
	DefaultInstanceCount = 1

	// DefaultVolumeSize is the attached volume size used when the caller
	// does not pin one.
	DefaultVolumeSize = "30GiB"
)

// Input wraps one uploaded object location with its declared content type.
// Never mutated after creation.
type Input struct {
	// Ref is the remote object reference.
	Ref objectstorage.ObjectRef

	// ContentType is the declared content type.
	ContentType string
}

// NewInput pairs a remote object reference with a content type.
func NewInput(ref objectstorage.ObjectRef, contentType string) Input {
	return Input{
		Ref:         ref,
		ContentType: contentType,
	}
}

// JobConfig is the complete description of one training request. Built once
// and passed by value to the launcher.
type JobConfig struct {
	// Algorithm identifies the off-the-shelf algorithm.
	Algorithm Algorithm

	// Image is the versioned execution container reference.
	Image string

	// InstanceType is the compute shape.
	InstanceType string

	// InstanceCount is the compute instance count.
	InstanceCount int

	// VolumeSizeGB is the attached volume size in GiB.
	VolumeSizeGB int

	// Output is the bucket and key prefix the platform writes artifacts
	// under.
	Output objectstorage.ObjectRef

	// Hyperparameters is the algorithm-specific schema.
	Hyperparameters Hyperparameters
}

type JobConfigOptions struct {
	InstanceType     string
	InstanceCount    int
	VolumeSize       string
	ContainerVersion string
}

type JobConfigOptionFunc func(options *JobConfigOptions)

func WithInstanceType(instanceType string) JobConfigOptionFunc {
	return func(options *JobConfigOptions) {
		options.InstanceType = instanceType
	}
}

func WithInstanceCount(instanceCount int) JobConfigOptionFunc {
	return func(options *JobConfigOptions) {
		options.InstanceCount = instanceCount
	}
}

func WithVolumeSize(volumeSize string) JobConfigOptionFunc {
	return func(options *JobConfigOptions) {
		options.VolumeSize = volumeSize
	}
}

func WithContainerVersion(containerVersion string) JobConfigOptionFunc {
	return func(options *JobConfigOptions) {
		options.ContainerVersion = containerVersion
	}
}

// NewJobConfig validates the algorithm, resolves its execution container for
// the session region and builds the job configuration. Validation failures
// surface before any remote call.
func NewJobConfig(sess *session.Session, algorithm Algorithm, hyperparameters Hyperparameters, outputPrefix string, option ...JobConfigOptionFunc) (*JobConfig, error) {
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	if hyperparameters == nil {
		return nil, errors.New("job config requires hyperparameters")
	}

	if hyperparameters.Algorithm() != algorithm {
		return nil, errors.Errorf("hyperparameter schema belongs to %s, not %s", hyperparameters.Algorithm(), algorithm)
	}

	if err := hyperparameters.Validate(); err != nil {
		return nil, err
	}

	options := &JobConfigOptions{
		InstanceType:     DefaultInstanceType,
		InstanceCount:    DefaultInstanceCount,
		VolumeSize:       DefaultVolumeSize,
		ContainerVersion: DefaultContainerVersion,
	}
	for _, o := range option {
		o(options)
	}

	image, err := ResolveContainer(algorithm, sess.Region, options.ContainerVersion)
	if err != nil {
		return nil, err
	}

	volumeBytes, err := units.RAMInBytes(options.VolumeSize)
	if err != nil {
		return nil, errors.Wrapf(err, "parse volume size %s", options.VolumeSize)
	}

	if options.InstanceCount <= 0 {
		return nil, errors.New("instance count must be positive")
	}

	return &JobConfig{
		Algorithm:       algorithm,
		Image:           image,
		InstanceType:    options.InstanceType,
		InstanceCount:   options.InstanceCount,
		VolumeSizeGB:    int(volumeBytes / units.GiB),
		Output:          objectstorage.ObjectRef{Bucket: sess.Bucket, Key: outputPrefix},
		Hyperparameters: hyperparameters,
	}, nil
}
