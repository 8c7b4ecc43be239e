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
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type s3 struct {
	// S3 client.
	client *awss3.S3

	// uploader streams objects of unknown length.
	uploader *s3manager.Uploader
}

// New s3 instance.
func newS3(region, endpoint, accessKey, secretKey string, s3ForcePathStyle bool) (ObjectStorage, error) {
	cfg := &aws.Config{
		Region:           aws.String(region),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(s3ForcePathStyle),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	s, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("new aws session failed: %s", err)
	}

	client := awss3.New(s)
	return &s3{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
	}, nil
}

// IsBucketExist returns whether the bucket exists.
func (s *s3) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	_, err := s.client.HeadBucketWithContext(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// CreateBucket creates bucket of object storage.
func (s *s3) CreateBucket(ctx context.Context, bucketName string) error {
	_, err := s.client.CreateBucketWithContext(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	return err
}

// GetObjectMetadata returns metadata of object.
func (s *s3) GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error) {
	resp, err := s.client.HeadObjectWithContext(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return &ObjectMetadata{
		Key:           objectKey,
		ContentLength: aws.Int64Value(resp.ContentLength),
		ContentType:   aws.StringValue(resp.ContentType),
		ETag:          aws.StringValue(resp.ETag),
		Digest:        aws.StringValue(resp.Metadata[MetaDigestUpper]),
	}, true, nil
}

// GetOject returns data of object.
func (s *s3) GetOject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	resp, err := s.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// PutObject puts data of object.
func (s *s3) PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
		Body:   reader,
		Metadata: map[string]*string{
			MetaDigestUpper: aws.String(digest),
		},
	})
	return err
}

// DeleteObject deletes data of object.
func (s *s3) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	return err
}

// IsObjectExist returns whether the object exists.
func (s *s3) IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error) {
	_, isExist, err := s.GetObjectMetadata(ctx, bucketName, objectKey)
	if err != nil {
		return false, err
	}

	return isExist, nil
}

// ListObjectMetadatas returns metadata of objects.
func (s *s3) ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(bucketName),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(limit),
	}
	if marker != "" {
		input.StartAfter = aws.String(marker)
	}

	resp, err := s.client.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, err
	}

	var metadatas []*ObjectMetadata
	for _, object := range resp.Contents {
		metadatas = append(metadatas, &ObjectMetadata{
			Key:           aws.StringValue(object.Key),
			ETag:          aws.StringValue(object.ETag),
			ContentLength: aws.Int64Value(object.Size),
		})
	}

	return metadatas, nil
}

// ListFolderObjects returns all objects under the folder prefix, following
// continuation tokens until the listing is drained.
func (s *s3) ListFolderObjects(ctx context.Context, bucketName, prefix string) ([]*ObjectMetadata, error) {
	var metadatas []*ObjectMetadata
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
		Prefix: aws.String(prefix),
	}

	for {
		resp, err := s.client.ListObjectsV2WithContext(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, object := range resp.Contents {
			metadatas = append(metadatas, &ObjectMetadata{
				Key:           aws.StringValue(object.Key),
				ETag:          aws.StringValue(object.ETag),
				ContentLength: aws.Int64Value(object.Size),
			})
		}

		if !aws.BoolValue(resp.IsTruncated) {
			break
		}
		input.ContinuationToken = resp.NextContinuationToken
	}

	return metadatas, nil
}

func isNotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		return reqErr.StatusCode() == http.StatusNotFound
	}

	return false
}
