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
	"time"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

// Job is the handle to one submitted training job. The job lifecycle is
// owned entirely by the external platform; the handle only queries it.
type Job struct {
	// Name is the job name acknowledged by the platform.
	Name string

	// Output is the object prefix this job's artifacts land under. It is
	// scoped to the job name so artifact retrieval correlates by job
	// identity, not by listing order.
	Output objectstorage.ObjectRef

	client *Client
}

// Status returns the platform's current view of the job.
func (j *Job) Status(ctx context.Context) (*JobStatus, error) {
	return j.client.DescribeTrainingJob(ctx, j.Name)
}

// Wait polls until the job reaches a terminal state or ctx is done. A failed
// job surfaces as an error carrying the platform diagnostic.
func (j *Job) Wait(ctx context.Context, interval time.Duration) (*JobStatus, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		status, err := j.Status(ctx)
		if err != nil {
			return nil, err
		}

		switch status.State {
		case JobStateCompleted:
			logger.Infof("training job %s completed", j.Name)
			return status, nil
		case JobStateFailed:
			return nil, errors.Errorf("training job %s failed: %s", j.Name, status.Message)
		}

		logger.Debugf("training job %s is %s, polling again in %s", j.Name, status.State, interval)
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for training job %s", j.Name)
		case <-time.After(interval):
		}
	}
}
