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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Job lifecycle states owned by the external platform.
const (
	JobStateQueued    = "queued"
	JobStateRunning   = "running"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 2 * time.Second,
	},
}

// Channel is one named input of a training job.
type Channel struct {
	// Location is the object url of the channel data.
	Location string `json:"location"`

	// ContentType is the declared content type.
	ContentType string `json:"content_type"`
}

// CreateTrainingJobRequest is the submission payload.
type CreateTrainingJobRequest struct {
	JobName         string             `json:"job_name"`
	Image           string             `json:"image"`
	InstanceType    string             `json:"instance_type"`
	InstanceCount   int                `json:"instance_count"`
	VolumeSizeGB    int                `json:"volume_size_gb"`
	OutputLocation  string             `json:"output_location"`
	Hyperparameters map[string]string  `json:"hyperparameters"`
	InputChannels   map[string]Channel `json:"input_channels"`
}

// CreateTrainingJobResponse is the synchronous submission acknowledgment.
type CreateTrainingJobResponse struct {
	JobName string `json:"job_name"`
	State   string `json:"state"`
}

// JobStatus is the platform's view of one job.
type JobStatus struct {
	JobName        string `json:"job_name"`
	State          string `json:"state"`
	Message        string `json:"message,omitempty"`
	OutputLocation string `json:"output_location,omitempty"`
}

// Client talks to the managed training service over its REST surface.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOptionFunc func(client *Client)

func WithHTTPClient(httpClient *http.Client) ClientOptionFunc {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// NewClient returns a training service client for the endpoint.
func NewClient(endpoint string, option ...ClientOptionFunc) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: defaultHTTPClient,
	}
	for _, o := range option {
		o(c)
	}

	return c
}

// CreateTrainingJob submits a job and returns as soon as the platform
// acknowledges it. Training runs asynchronously after this call.
func (c *Client) CreateTrainingJob(ctx context.Context, req *CreateTrainingJobRequest) (*CreateTrainingJobResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/training/jobs", c.endpoint)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusAccepted {
		return nil, errors.Errorf("create training job response is err, error code is %d", response.StatusCode)
	}

	var resp CreateTrainingJobResponse
	if err := json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// DescribeTrainingJob queries the state of one job by name.
func (c *Client) DescribeTrainingJob(ctx context.Context, jobName string) (*JobStatus, error) {
	url := fmt.Sprintf("%s/api/v1/training/jobs/%s", c.endpoint, jobName)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("training job %s not found", jobName)
	}

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("describe training job response is err, error code is %d", response.StatusCode)
	}

	var status JobStatus
	if err := json.NewDecoder(response.Body).Decode(&status); err != nil {
		return nil, err
	}

	return &status, nil
}
