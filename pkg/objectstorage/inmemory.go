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
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// inMemory keeps whole objects in process memory. Listing order is
// lexicographic by key, which is the ordering the real backends document.
type inMemory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*inMemoryObject
}

type inMemoryObject struct {
	data   []byte
	digest string
}

func newInMemory() ObjectStorage {
	return &inMemory{
		buckets: map[string]map[string]*inMemoryObject{},
	}
}

// IsBucketExist returns whether the bucket exists.
func (i *inMemory) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	_, ok := i.buckets[bucketName]
	return ok, nil
}

// CreateBucket creates bucket of object storage.
func (i *inMemory) CreateBucket(ctx context.Context, bucketName string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.buckets[bucketName]; !ok {
		i.buckets[bucketName] = map[string]*inMemoryObject{}
	}
	return nil
}

// GetObjectMetadata returns metadata of object.
func (i *inMemory) GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	object, ok := i.buckets[bucketName][objectKey]
	if !ok {
		return nil, false, nil
	}

	return &ObjectMetadata{
		Key:           objectKey,
		ContentLength: int64(len(object.data)),
		Digest:        object.digest,
	}, true, nil
}

// GetOject returns data of object.
func (i *inMemory) GetOject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	object, ok := i.buckets[bucketName][objectKey]
	if !ok {
		return nil, errors.Errorf("object %s/%s not found", bucketName, objectKey)
	}

	return io.NopCloser(bytes.NewReader(object.data)), nil
}

// PutObject puts data of object. The bucket is created implicitly so local
// smoke runs need no provisioning step.
func (i *inMemory) PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if digest == "" {
		sum := md5.Sum(data)
		digest = hex.EncodeToString(sum[:])
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.buckets[bucketName]; !ok {
		i.buckets[bucketName] = map[string]*inMemoryObject{}
	}
	i.buckets[bucketName][objectKey] = &inMemoryObject{
		data:   data,
		digest: digest,
	}
	return nil
}

// DeleteObject deletes data of object.
func (i *inMemory) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.buckets[bucketName], objectKey)
	return nil
}

// IsObjectExist returns whether the object exists.
func (i *inMemory) IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error) {
	_, isExist, err := i.GetObjectMetadata(ctx, bucketName, objectKey)
	return isExist, err
}

// ListObjectMetadatas returns metadata of objects.
func (i *inMemory) ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error) {
	metadatas, err := i.ListFolderObjects(ctx, bucketName, prefix)
	if err != nil {
		return nil, err
	}

	var out []*ObjectMetadata
	for _, meta := range metadatas {
		if marker != "" && meta.Key <= marker {
			continue
		}
		out = append(out, meta)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}

	return out, nil
}

// ListFolderObjects returns all objects under the folder prefix.
func (i *inMemory) ListFolderObjects(ctx context.Context, bucketName, prefix string) ([]*ObjectMetadata, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var metadatas []*ObjectMetadata
	for key, object := range i.buckets[bucketName] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		metadatas = append(metadatas, &ObjectMetadata{
			Key:           key,
			ContentLength: int64(len(object.data)),
			Digest:        object.digest,
		})
	}

	sort.Slice(metadatas, func(a, b int) bool {
		return metadatas[a].Key < metadatas[b].Key
	})
	return metadatas, nil
}
