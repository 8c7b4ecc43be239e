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
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"

	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

const (
	// storagePrefixJob keys one job record by name.
	storagePrefixJob = "urtrain:job"

	// storagePrefixDatasetJobs keys the per-dataset submit-time index.
	storagePrefixDatasetJobs = "urtrain:dataset"
)

// ErrJobNotFound reports a job name with no record.
var ErrJobNotFound = errors.New("training job record not found")

// JobRecord is the bookkeeping row for one submitted job.
type JobRecord struct {
	Name         string    `json:"name"`
	DatasetID    string    `json:"dataset_id"`
	Algorithm    Algorithm `json:"algorithm"`
	OutputBucket string    `json:"output_bucket"`
	OutputKey    string    `json:"output_key"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Output returns the artifact prefix of the recorded job.
func (r *JobRecord) Output() objectstorage.ObjectRef {
	return objectstorage.ObjectRef{
		Bucket: r.OutputBucket,
		Key:    r.OutputKey,
	}
}

// JobStore keeps submitted job records in redis, indexed per dataset by
// submit time.
type JobStore struct {
	client redis.UniversalClient
}

// NewJobStore returns a job store over the redis endpoints, or nil when no
// endpoint is configured.
func NewJobStore(endpoints []string, password string, enableCluster bool) *JobStore {
	if len(endpoints) == 0 {
		return nil
	}

	var client redis.UniversalClient
	if enableCluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       endpoints,
			Password:    password,
			DialTimeout: 3 * time.Second,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     endpoints[0],
			Password: password,
		})
	}

	return &JobStore{
		client: client,
	}
}

// Record stores the job record and indexes it for its dataset.
func (s *JobStore) Record(ctx context.Context, record *JobRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, jobKey(record.Name), value, 0).Err(); err != nil {
		return err
	}

	return s.client.ZAdd(ctx, datasetJobsKey(record.DatasetID), redis.Z{
		Score:  float64(record.SubmittedAt.UnixNano()),
		Member: record.Name,
	}).Err()
}

// Get returns the record of one job by name.
func (s *JobStore) Get(ctx context.Context, jobName string) (*JobRecord, error) {
	value, err := s.client.Get(ctx, jobKey(jobName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(ErrJobNotFound, "%s", jobName)
		}
		return nil, err
	}

	var record JobRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// LatestForDataset returns the most recently submitted job record for the
// dataset.
func (s *JobStore) LatestForDataset(ctx context.Context, datasetID string) (*JobRecord, error) {
	names, err := s.client.ZRevRange(ctx, datasetJobsKey(datasetID), 0, 0).Result()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, errors.Wrapf(ErrJobNotFound, "dataset %s", datasetID)
	}

	return s.Get(ctx, names[0])
}

func jobKey(jobName string) string {
	return fmt.Sprintf("%s:%s", storagePrefixJob, jobName)
}

func datasetJobsKey(datasetID string) string {
	return fmt.Sprintf("%s:%s:jobs", storagePrefixDatasetJobs, datasetID)
}
