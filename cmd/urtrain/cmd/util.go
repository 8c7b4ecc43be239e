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

package cmd

import (
	"net/http"

	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
	"github.com/zhangshuiyong/urchin-train/pkg/session"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
)

// newSession builds the process session from the effective config.
func newSession() (*session.Session, error) {
	return session.Get(cfg)
}

// newMaterializer returns the storage client and a materializer bound to the
// session bucket and the configured scratch root.
func newMaterializer(sess *session.Session) (objectstorage.ObjectStorage, *dataset.Materializer, error) {
	store, err := sess.ObjectStorage()
	if err != nil {
		return nil, nil, err
	}

	return store, dataset.NewMaterializer(store, sess.Bucket, dataset.WithScratchRoot(cfg.ScratchRoot)), nil
}

// newTrainingClient returns a client for the configured training service.
func newTrainingClient(sess *session.Session) *training.Client {
	return training.NewClient(sess.TrainingEndpoint,
		training.WithHTTPClient(&http.Client{Timeout: cfg.TrainingService.Timeout}))
}

// newLauncher wires the launcher, recording submissions when redis is
// configured.
func newLauncher(sess *session.Session) *training.Launcher {
	var options []training.LauncherOptionFunc
	if store := newJobStore(); store != nil {
		options = append(options, training.WithJobStore(store))
	}

	return training.NewLauncher(newTrainingClient(sess), options...)
}

func newJobStore() *training.JobStore {
	return training.NewJobStore(cfg.Redis.Endpoints, cfg.Redis.Password, cfg.Redis.EnableCluster)
}

// loadSplits parses the train and validation csv files into splits.
func loadSplits(trainPath, validationPath string) (*dataset.Split, *dataset.Split, error) {
	train, err := dataset.LoadCSV(dataset.SplitTrain, trainPath)
	if err != nil {
		return nil, nil, err
	}

	validation, err := dataset.LoadCSV(dataset.SplitValidation, validationPath)
	if err != nil {
		return nil, nil, err
	}

	return train, validation, nil
}
