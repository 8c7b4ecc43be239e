package training

import (
	"testing"

	testifyassert "github.com/stretchr/testify/assert"

	"github.com/zhangshuiyong/urchin-train/pkg/session"
)

func testSession() *session.Session {
	return &session.Session{
		Region: "us-east-1",
		Bucket: "models",
	}
}

func TestNewJobConfig(t *testing.T) {
	assert := testifyassert.New(t)

	cfg, err := NewJobConfig(testSession(), AlgorithmXGBoost, NewXGBoostHyperparameters(), "boston-deploy-hl/output")
	assert.NoError(err)
	assert.Equal("811284229777.dkr.ecr.us-east-1.amazonaws.com/xgboost:1", cfg.Image)
	assert.Equal(DefaultInstanceType, cfg.InstanceType)
	assert.Equal(1, cfg.InstanceCount)
	assert.Equal(30, cfg.VolumeSizeGB)
	assert.Equal("models", cfg.Output.Bucket)
	assert.Equal("boston-deploy-hl/output", cfg.Output.Key)
}

func TestNewJobConfigOptions(t *testing.T) {
	assert := testifyassert.New(t)

	cfg, err := NewJobConfig(testSession(), AlgorithmLinearLearner, NewLinearLearnerHyperparameters(13), "out",
		WithInstanceType("ml.c5.2xlarge"),
		WithInstanceCount(2),
		WithVolumeSize("100GiB"),
		WithContainerVersion("latest"),
	)
	assert.NoError(err)
	assert.Equal("811284229777.dkr.ecr.us-east-1.amazonaws.com/linear-learner:latest", cfg.Image)
	assert.Equal("ml.c5.2xlarge", cfg.InstanceType)
	assert.Equal(2, cfg.InstanceCount)
	assert.Equal(100, cfg.VolumeSizeGB)
}

func TestNewJobConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*JobConfig, error)
	}{
		{
			name: "unsupported algorithm fails before anything else",
			build: func() (*JobConfig, error) {
				return NewJobConfig(testSession(), Algorithm("random-forest"), NewXGBoostHyperparameters(), "out")
			},
		},
		{
			name: "nil hyperparameters",
			build: func() (*JobConfig, error) {
				return NewJobConfig(testSession(), AlgorithmXGBoost, nil, "out")
			},
		},
		{
			name: "schema from the wrong algorithm",
			build: func() (*JobConfig, error) {
				return NewJobConfig(testSession(), AlgorithmXGBoost, NewLinearLearnerHyperparameters(13), "out")
			},
		},
		{
			name: "invalid schema values",
			build: func() (*JobConfig, error) {
				h := NewXGBoostHyperparameters()
				h.NumRound = 0
				return NewJobConfig(testSession(), AlgorithmXGBoost, h, "out")
			},
		},
		{
			name: "unknown region",
			build: func() (*JobConfig, error) {
				sess := testSession()
				sess.Region = "mars-north-1"
				return NewJobConfig(sess, AlgorithmXGBoost, NewXGBoostHyperparameters(), "out")
			},
		},
		{
			name: "unparseable volume size",
			build: func() (*JobConfig, error) {
				return NewJobConfig(testSession(), AlgorithmXGBoost, NewXGBoostHyperparameters(), "out", WithVolumeSize("many"))
			},
		},
		{
			name: "zero instance count",
			build: func() (*JobConfig, error) {
				return NewJobConfig(testSession(), AlgorithmXGBoost, NewXGBoostHyperparameters(), "out", WithInstanceCount(0))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			_, err := tc.build()
			assert.Error(err)
		})
	}
}
