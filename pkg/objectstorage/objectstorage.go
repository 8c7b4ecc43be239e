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
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// ServiceNameS3 is the name of s3 storage service.
	ServiceNameS3 = "s3"

	// ServiceNameMINIO is the name of minio storage service.
	ServiceNameMINIO = "minio"

	// ServiceNameInMemory is the name of the in-process storage service,
	// used by tests and local smoke runs.
	ServiceNameInMemory = "inmemory"
)

const (
	// MetaDigest is the digest key of object user metadata.
	MetaDigest = "digest"

	// MetaDigestUpper is the upper case digest key returned by some backends.
	MetaDigestUpper = "Digest"
)

// ObjectURLScheme is the scheme of object storage urls, e.g.
// s3://bucket_name/object_key.
const ObjectURLScheme = "s3"

// ObjectMetadata provides metadata of object.
type ObjectMetadata struct {
	// Key is object key.
	Key string

	// ContentLength is Content-Length header.
	ContentLength int64

	// ContentType is Content-Type header.
	ContentType string

	// ETag is ETag header.
	ETag string

	// Digest is object digest.
	Digest string
}

// ObjectRef identifies one object by bucket and key. It is immutable once
// produced by an upload.
type ObjectRef struct {
	// Bucket is bucket name.
	Bucket string

	// Key is object key.
	Key string
}

// URL returns the object url, e.g. s3://bucket_name/object_key.
func (r ObjectRef) URL() string {
	return fmt.Sprintf("%s://%s/%s", ObjectURLScheme, r.Bucket, r.Key)
}

// ParseObjectURL parses an object url into an ObjectRef.
func ParseObjectURL(rawURL string) (ObjectRef, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ObjectRef{}, err
	}

	if u.Scheme != ObjectURLScheme {
		return ObjectRef{}, errors.Errorf("invalid scheme, e.g. %s://bucket_name/object_key", ObjectURLScheme)
	}

	if u.Host == "" {
		return ObjectRef{}, errors.New("empty bucket name")
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return ObjectRef{}, errors.New("empty object key")
	}

	return ObjectRef{Bucket: u.Host, Key: key}, nil
}

// ObjectStorage is the interface used for object storage.
type ObjectStorage interface {
	// IsBucketExist returns whether the bucket exists.
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)

	// CreateBucket creates bucket of object storage.
	CreateBucket(ctx context.Context, bucketName string) error

	// GetObjectMetadata returns metadata of object.
	GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error)

	// GetOject returns data of object.
	GetOject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error)

	// PutObject puts data of object.
	PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error

	// DeleteObject deletes data of object.
	DeleteObject(ctx context.Context, bucketName, objectKey string) error

	// IsObjectExist returns whether the object exists.
	IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error)

	// ListObjectMetadatas returns metadata of objects.
	ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error)

	// ListFolderObjects returns all objects under the folder prefix.
	ListFolderObjects(ctx context.Context, bucketName, prefix string) ([]*ObjectMetadata, error)
}

// objectStorage provides object storage.
type objectStorage struct {
	// name is object storage name of type, it can be s3, minio or inmemory.
	name string

	// region is storage region.
	region string

	// endpoint is datacenter endpoint.
	endpoint string

	// accessKey is access key ID.
	accessKey string

	// secretKey is access key secret.
	secretKey string

	// s3ForcePathStyle forces path-style addressing.
	s3ForcePathStyle bool
}

// Option is a functional option for configuring the objectStorage.
type Option func(o *objectStorage)

// WithS3ForcePathStyle set the S3ForcePathStyle for objectStorage.
func WithS3ForcePathStyle(s3ForcePathStyle bool) Option {
	return func(o *objectStorage) {
		o.s3ForcePathStyle = s3ForcePathStyle
	}
}

// New object storage interface.
func New(name, region, endpoint, accessKey, secretKey string, options ...Option) (ObjectStorage, error) {
	o := &objectStorage{
		name:             name,
		region:           region,
		endpoint:         endpoint,
		accessKey:        accessKey,
		secretKey:        secretKey,
		s3ForcePathStyle: true,
	}

	for _, opt := range options {
		opt(o)
	}

	switch o.name {
	case ServiceNameS3:
		return newS3(o.region, o.endpoint, o.accessKey, o.secretKey, o.s3ForcePathStyle)
	case ServiceNameMINIO:
		return newMinio(o.region, o.endpoint, o.accessKey, o.secretKey)
	case ServiceNameInMemory:
		return newInMemory(), nil
	}

	return nil, fmt.Errorf("unknow service name %s", name)
}

// NeedRetry returns whether the storage error is worth retrying.
func NeedRetry(err error) bool {
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "context deadline exceeded") ||
		strings.Contains(errMsg, "connection failed") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout")
}

// WaitBucket blocks until the bucket exists or the timeout elapses.
func WaitBucket(ctx context.Context, client ObjectStorage, bucketName string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		isExist, err := client.IsBucketExist(ctx, bucketName)
		if err == nil && isExist {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Errorf("bucket %s is not available: %v", bucketName, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}
