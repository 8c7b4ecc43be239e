package objectstorage

import (
	"context"
	"io"
	"strings"
	"testing"

	testifyassert "github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		wantErr     bool
	}{
		{name: "minio backend", serviceName: ServiceNameMINIO},
		{name: "s3 backend", serviceName: ServiceNameS3},
		{name: "inmemory backend", serviceName: ServiceNameInMemory},
		{name: "unknown backend", serviceName: "oss2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			client, err := New(tc.serviceName, "us-east-1", "127.0.0.1:9000", "ak", "sk")
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.NotNil(client)
		})
	}
}

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		name       string
		rawURL     string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "valid url",
			rawURL:     "s3://models/boston-deploy-hl/train.csv",
			wantBucket: "models",
			wantKey:    "boston-deploy-hl/train.csv",
		},
		{name: "wrong scheme", rawURL: "http://models/key", wantErr: true},
		{name: "missing key", rawURL: "s3://models", wantErr: true},
		{name: "not a url", rawURL: "models/key", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			ref, err := ParseObjectURL(tc.rawURL)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.wantBucket, ref.Bucket)
			assert.Equal(tc.wantKey, ref.Key)
			assert.Equal(tc.rawURL, ref.URL())
		})
	}
}

func TestInMemoryPutGetList(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	client, err := New(ServiceNameInMemory, "", "", "", "")
	assert.NoError(err)

	err = client.PutObject(ctx, "models", "boston-deploy-hl/train.csv", "", strings.NewReader("1,2,3\n"))
	assert.NoError(err)

	// Re-upload of identical content is idempotent.
	err = client.PutObject(ctx, "models", "boston-deploy-hl/train.csv", "", strings.NewReader("1,2,3\n"))
	assert.NoError(err)

	err = client.PutObject(ctx, "models", "boston-deploy-hl/validation.csv", "", strings.NewReader("4,5,6\n"))
	assert.NoError(err)

	isExist, err := client.IsObjectExist(ctx, "models", "boston-deploy-hl/train.csv")
	assert.NoError(err)
	assert.True(isExist)

	reader, err := client.GetOject(ctx, "models", "boston-deploy-hl/train.csv")
	assert.NoError(err)
	data, err := io.ReadAll(reader)
	assert.NoError(err)
	assert.Equal("1,2,3\n", string(data))

	metadatas, err := client.ListFolderObjects(ctx, "models", "boston-deploy-hl")
	assert.NoError(err)
	assert.Len(metadatas, 2)
	assert.Equal("boston-deploy-hl/train.csv", metadatas[0].Key)
	assert.Equal("boston-deploy-hl/validation.csv", metadatas[1].Key)

	metadatas, err = client.ListObjectMetadatas(ctx, "models", "boston-deploy-hl", "boston-deploy-hl/train.csv", 10)
	assert.NoError(err)
	assert.Len(metadatas, 1)
	assert.Equal("boston-deploy-hl/validation.csv", metadatas[0].Key)
}
