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

// Package session resolves the identity, region and default bucket every
// other step runs under. The session is read-only after creation.
package session

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/config"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

// Session is the authenticated context shared by the workflow steps.
type Session struct {
	// Region is the platform region.
	Region string

	// Bucket is the default storage bucket.
	Bucket string

	// StorageName is object storage name of type, it can be s3, minio or
	// inmemory.
	StorageName string

	// StorageEndpoint is datacenter endpoint.
	StorageEndpoint string

	// AccessKey is access key ID.
	AccessKey string

	// SecretKey is access key secret.
	SecretKey string

	// TrainingEndpoint is the training service base url.
	TrainingEndpoint string
}

// New builds a session from config. Credentials missing from the config fall
// back to the conventional environment variables; if neither resolves an
// identity the call fails and there is no recovery path.
func New(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accessKey := cfg.ObjectStorage.AccessKey
	secretKey := cfg.ObjectStorage.SecretKey
	if accessKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if secretKey == "" {
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	// The inmemory backend carries no credentials.
	if cfg.ObjectStorage.Name != objectstorage.ServiceNameInMemory && (accessKey == "" || secretKey == "") {
		return nil, errors.New("no valid identity available in config or environment")
	}

	logger.Infof("session established, region:%s bucket:%s storage:%s", cfg.Region, cfg.ObjectStorage.Bucket, cfg.ObjectStorage.Name)
	return &Session{
		Region:           cfg.Region,
		Bucket:           cfg.ObjectStorage.Bucket,
		StorageName:      cfg.ObjectStorage.Name,
		StorageEndpoint:  cfg.ObjectStorage.Endpoint,
		AccessKey:        accessKey,
		SecretKey:        secretKey,
		TrainingEndpoint: cfg.TrainingService.Endpoint,
	}, nil
}

// ObjectStorage returns a storage client bound to the session identity.
func (s *Session) ObjectStorage() (objectstorage.ObjectStorage, error) {
	return objectstorage.New(s.StorageName, s.Region, s.StorageEndpoint, s.AccessKey, s.SecretKey)
}

var (
	defaultSession *Session
	defaultErr     error
	once           sync.Once
)

// Get returns the process-wide session built from cfg, initialized exactly
// once. Later calls return the first result regardless of cfg.
func Get(cfg *config.Config) (*Session, error) {
	once.Do(func() {
		defaultSession, defaultErr = New(cfg)
	})

	return defaultSession, defaultErr
}
