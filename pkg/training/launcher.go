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
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/idgen"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

const (
	// ChannelTrain is the training data channel name.
	ChannelTrain = "train"

	// ChannelValidation is the validation data channel name.
	ChannelValidation = "validation"
)

// Launcher submits training jobs. Launch is non-blocking: it returns on
// submission acknowledgment without waiting for job completion.
type Launcher struct {
	client *Client
	store  *JobStore
}

type LauncherOptionFunc func(launcher *Launcher)

// WithJobStore records every submission in the job store, so artifact
// retrieval can correlate a dataset with its most recent job.
func WithJobStore(store *JobStore) LauncherOptionFunc {
	return func(launcher *Launcher) {
		launcher.store = store
	}
}

// NewLauncher returns a launcher over the training service client.
func NewLauncher(client *Client, option ...LauncherOptionFunc) *Launcher {
	l := &Launcher{
		client: client,
	}
	for _, o := range option {
		o(l)
	}

	return l
}

// Launch submits one asynchronous training job referencing the train and
// validation inputs. A submission-time failure is surfaced synchronously;
// execution failures after acknowledgment are observed through the returned
// handle's Status and Wait, never here.
func (l *Launcher) Launch(ctx context.Context, datasetID string, cfg *JobConfig, train, validation Input) (*Job, error) {
	if err := cfg.Algorithm.Validate(); err != nil {
		return nil, err
	}

	for _, input := range []Input{train, validation} {
		if input.Ref.Bucket == "" || input.Ref.Key == "" {
			return nil, errors.New("training inputs require a remote object reference")
		}
		if input.ContentType == "" {
			return nil, errors.New("training inputs require a declared content type")
		}
	}

	jobName := idgen.TrainingJobName(datasetID, cfg.Algorithm.String())
	output := objectstorage.ObjectRef{
		Bucket: cfg.Output.Bucket,
		Key:    fmt.Sprintf("%s/%s/output", cfg.Output.Key, jobName),
	}

	req := &CreateTrainingJobRequest{
		JobName:         jobName,
		Image:           cfg.Image,
		InstanceType:    cfg.InstanceType,
		InstanceCount:   cfg.InstanceCount,
		VolumeSizeGB:    cfg.VolumeSizeGB,
		OutputLocation:  output.URL(),
		Hyperparameters: cfg.Hyperparameters.Map(),
		InputChannels: map[string]Channel{
			ChannelTrain:      {Location: train.Ref.URL(), ContentType: train.ContentType},
			ChannelValidation: {Location: validation.Ref.URL(), ContentType: validation.ContentType},
		},
	}

	resp, err := l.client.CreateTrainingJob(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "submit training job %s", jobName)
	}

	job := &Job{
		Name:   resp.JobName,
		Output: output,
		client: l.client,
	}

	if l.store != nil {
		record := &JobRecord{
			Name:         job.Name,
			DatasetID:    datasetID,
			Algorithm:    cfg.Algorithm,
			OutputBucket: output.Bucket,
			OutputKey:    output.Key,
			SubmittedAt:  time.Now().UTC(),
		}
		if err := l.store.Record(ctx, record); err != nil {
			// The job is already submitted, a bookkeeping failure must not
			// fail the launch.
			logger.Warnf("record training job %s failed: %v", job.Name, err)
		}
	}

	logger.Infof("submitted training job %s, state:%s output:%s", job.Name, resp.State, output.URL())
	return job, nil
}
