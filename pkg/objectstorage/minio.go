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

package objectstorage

import (
	"context"
	"fmt"
	"io"

	"github.com/go-http-utils/headers"
	"github.com/minio/minio-go/v7/pkg/credentials"

	MinIO "github.com/minio/minio-go/v7"
)

type minio struct {
	// Minio client.
	client *MinIO.Client
	region string
}

// New minio instance.
func newMinio(region, endpoint, accessKey, secretKey string) (ObjectStorage, error) {
	useSSL := false
	client, err := MinIO.New(endpoint, &MinIO.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client failed: %s", err)
	}

	return &minio{
		client: client,
		region: region,
	}, nil
}

// IsBucketExist returns whether the bucket exists.
func (m *minio) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	isExist, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, err
	}

	return isExist, nil
}

// CreateBucket creates bucket of object storage.
func (m *minio) CreateBucket(ctx context.Context, bucketName string) error {
	err := m.client.MakeBucket(ctx, bucketName, MinIO.MakeBucketOptions{Region: m.region})
	return err
}

// GetObjectMetadata returns metadata of object.
func (m *minio) GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error) {
	resp, err := m.client.StatObject(ctx, bucketName, objectKey, MinIO.StatObjectOptions{})
	if err != nil {
		if minioErr, ok := err.(MinIO.ErrorResponse); ok && minioErr.Code == "NoSuchKey" {
			return nil, false, nil
		}

		return nil, false, err
	}

	return &ObjectMetadata{
		Key:           objectKey,
		ContentLength: resp.Size,
		ContentType:   resp.Metadata.Get(headers.ContentType),
		ETag:          resp.ETag,
		Digest:        resp.UserMetadata[MetaDigestUpper],
	}, true, nil
}

// GetOject returns data of object.
func (m *minio) GetOject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	resp, err := m.client.GetObject(ctx, bucketName, objectKey, MinIO.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// PutObject puts data of object.
func (m *minio) PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error {
	meta := map[string]string{}
	meta[MetaDigest] = digest

	_, err := m.client.PutObject(ctx, bucketName, objectKey, reader, -1, MinIO.PutObjectOptions{UserMetadata: meta})
	return err
}

// DeleteObject deletes data of object.
func (m *minio) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	err := m.client.RemoveObject(ctx, bucketName, objectKey, MinIO.RemoveObjectOptions{})

	return err
}

// IsObjectExist returns whether the object exists.
func (m *minio) IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error) {
	_, isExist, err := m.GetObjectMetadata(ctx, bucketName, objectKey)
	if err != nil {
		return false, err
	}

	if !isExist {
		return false, nil
	}

	return true, nil
}

// ListObjectMetadatas returns metadata of objects.
func (m *minio) ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error) {
	objectCh := m.client.ListObjects(ctx, bucketName, MinIO.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: marker,
		MaxKeys:    int(limit),
		Recursive:  true,
	})

	var metadatas []*ObjectMetadata
	for object := range objectCh {
		if object.Err != nil {
			return nil, object.Err
		}

		metadatas = append(metadatas, &ObjectMetadata{
			Key:  object.Key,
			ETag: object.ETag,
		})
	}

	return metadatas, nil
}

// ListFolderObjects returns all objects under the folder prefix.
func (m *minio) ListFolderObjects(ctx context.Context, bucketName, prefix string) ([]*ObjectMetadata, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metadatas []*ObjectMetadata
	for object := range m.client.ListObjects(ctx, bucketName, MinIO.ListObjectsOptions{
		Prefix:       prefix,
		WithMetadata: true,
		Recursive:    true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}

		metadatas = append(metadatas, &ObjectMetadata{
			Key:           object.Key,
			ETag:          object.ETag,
			ContentLength: object.Size,
		})
	}

	return metadatas, nil
}
