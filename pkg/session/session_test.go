package session

import (
	"testing"

	testifyassert "github.com/stretchr/testify/assert"

	"github.com/zhangshuiyong/urchin-train/pkg/config"
)

func validConfig() *config.Config {
	cfg := config.New()
	cfg.Region = "us-east-1"
	cfg.ObjectStorage.Name = "minio"
	cfg.ObjectStorage.Endpoint = "127.0.0.1:9000"
	cfg.ObjectStorage.AccessKey = "ak"
	cfg.ObjectStorage.SecretKey = "sk"
	cfg.ObjectStorage.Bucket = "models"
	return cfg
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(cfg *config.Config) {}},
		{
			name: "missing region",
			mutate: func(cfg *config.Config) {
				cfg.Region = ""
			},
			wantErr: true,
		},
		{
			name: "missing bucket",
			mutate: func(cfg *config.Config) {
				cfg.ObjectStorage.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "missing identity",
			mutate: func(cfg *config.Config) {
				cfg.ObjectStorage.AccessKey = ""
				cfg.ObjectStorage.SecretKey = ""
			},
			wantErr: true,
		},
		{
			name: "inmemory needs no identity",
			mutate: func(cfg *config.Config) {
				cfg.ObjectStorage.Name = "inmemory"
				cfg.ObjectStorage.AccessKey = ""
				cfg.ObjectStorage.SecretKey = ""
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			t.Setenv("AWS_ACCESS_KEY_ID", "")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "")

			cfg := validConfig()
			tc.mutate(cfg)

			sess, err := New(cfg)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(cfg.Region, sess.Region)
			assert.Equal(cfg.ObjectStorage.Bucket, sess.Bucket)
		})
	}
}

func TestSessionObjectStorage(t *testing.T) {
	assert := testifyassert.New(t)

	sess, err := New(validConfig())
	assert.NoError(err)

	client, err := sess.ObjectStorage()
	assert.NoError(err)
	assert.NotNil(client)
}
