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

package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultScratchRoot is the local scratch directory for materialized
	// splits.
	DefaultScratchRoot = "../data"

	// DefaultTrainingTimeout bounds one training service round-trip.
	DefaultTrainingTimeout = 30 * time.Second
)

// ObjectStorageConfig selects and authenticates a storage backend.
type ObjectStorageConfig struct {
	// Name is object storage name of type, it can be s3, minio or inmemory.
	Name string `mapstructure:"name" yaml:"name"`

	// Endpoint is datacenter endpoint.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// AccessKey is access key ID.
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`

	// SecretKey is access key secret.
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`

	// Bucket is the default bucket for datasets and artifacts.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
}

// TrainingServiceConfig locates the managed training service.
type TrainingServiceConfig struct {
	// Endpoint is the training service base url.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Timeout bounds one request round-trip.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// RedisConfig locates the job record store. Optional.
type RedisConfig struct {
	// Endpoints is redis addresses.
	Endpoints []string `mapstructure:"endpoints" yaml:"endpoints"`

	// Password is redis password.
	Password string `mapstructure:"password" yaml:"password"`

	// EnableCluster enables redis cluster mode.
	EnableCluster bool `mapstructure:"enableCluster" yaml:"enableCluster"`
}

// Config is the urtrain daemonless client configuration.
type Config struct {
	// Region is the platform region used for container resolution.
	Region string `mapstructure:"region" yaml:"region"`

	// ScratchRoot is the local scratch directory for materialized splits.
	ScratchRoot string `mapstructure:"scratchRoot" yaml:"scratchRoot"`

	ObjectStorage   ObjectStorageConfig   `mapstructure:"objectStorage" yaml:"objectStorage"`
	TrainingService TrainingServiceConfig `mapstructure:"trainingService" yaml:"trainingService"`
	Redis           RedisConfig           `mapstructure:"redis" yaml:"redis"`
}

// New returns a config with defaults applied.
func New() *Config {
	return &Config{
		ScratchRoot: DefaultScratchRoot,
		ObjectStorage: ObjectStorageConfig{
			Name: "s3",
		},
		TrainingService: TrainingServiceConfig{
			Timeout: DefaultTrainingTimeout,
		},
	}
}

// Load reads config from path (yaml), with URTRAIN_* environment variables
// taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("urtrain")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config %s", path)
	}

	return cfg, nil
}

// Validate checks the fields every workflow step depends on.
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("config requires a region")
	}

	if c.ObjectStorage.Name == "" {
		return errors.New("config requires an object storage name")
	}

	if c.ObjectStorage.Bucket == "" {
		return errors.New("config requires a default bucket")
	}

	return nil
}
