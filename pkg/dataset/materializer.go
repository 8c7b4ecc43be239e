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

package dataset

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
	"github.com/zhangshuiyong/urchin-train/pkg/retry"
)

const (
	// keyPrefixSuffix is appended to the dataset id to form the remote key
	// prefix.
	keyPrefixSuffix = "-deploy-hl"

	uploadInitBackoff = 0.5
	uploadMaxBackoff  = 4.0
	uploadMaxAttempts = 3
)

// Materializer serializes splits to local scratch storage and uploads them
// to object storage. Re-upload of identical content is safe, so the upload
// is retried at-least-once on transient failures.
type Materializer struct {
	store   objectstorage.ObjectStorage
	bucket  string
	options *MaterializerOptions
}

type MaterializerOptions struct {
	ScratchRoot string
}

type MaterializerOptionFunc func(options *MaterializerOptions)

func WithScratchRoot(scratchRoot string) MaterializerOptionFunc {
	return func(options *MaterializerOptions) {
		options.ScratchRoot = scratchRoot
	}
}

// NewMaterializer returns a materializer writing under the default scratch
// root unless overridden.
func NewMaterializer(store objectstorage.ObjectStorage, bucket string, option ...MaterializerOptionFunc) *Materializer {
	m := &Materializer{
		store:  store,
		bucket: bucket,
		options: &MaterializerOptions{
			ScratchRoot: "../data",
		},
	}
	for _, o := range option {
		o(m.options)
	}

	return m
}

// KeyPrefix returns the remote key prefix for the dataset.
func (m *Materializer) KeyPrefix(datasetID string) string {
	return datasetID + keyPrefixSuffix
}

// WriteCSV writes the split as comma-delimited text with the target as the
// first column, no header and no index, to
// <scratch-root>/<dataset-id>/<split>.csv. The write is idempotent: the same
// split produces byte-identical content and overwrites any previous file.
func (m *Materializer) WriteCSV(datasetID string, split *Split) (string, error) {
	dir := filepath.Join(m.options.ScratchRoot, datasetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create scratch dir %s", dir)
	}

	rows, cols := split.Features.Dims()
	var buf bytes.Buffer
	for i := 0; i < rows; i++ {
		buf.WriteString(strconv.FormatFloat(split.Target[i], 'f', -1, 64))
		for j := 0; j < cols; j++ {
			buf.WriteByte(',')
			buf.WriteString(strconv.FormatFloat(split.Features.At(i, j), 'f', -1, 64))
		}
		buf.WriteByte('\n')
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.csv", split.Name))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}

	logger.Debugf("materialized split %s of dataset %s to %s, rows:%d", split.Name, datasetID, path, rows)
	return path, nil
}

// Upload materializes the split and puts it to object storage under
// <dataset-id>-deploy-hl/<split>.csv. The test split never participates in
// training and is refused here.
func (m *Materializer) Upload(ctx context.Context, datasetID string, split *Split) (objectstorage.ObjectRef, error) {
	if split.Name == SplitTest {
		return objectstorage.ObjectRef{}, errors.Errorf("split %s is not uploaded for training", split.Name)
	}

	path, err := m.WriteCSV(datasetID, split)
	if err != nil {
		return objectstorage.ObjectRef{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return objectstorage.ObjectRef{}, errors.Wrapf(err, "read %s", path)
	}

	sum := md5.Sum(data)
	digest := hex.EncodeToString(sum[:])
	objectKey := fmt.Sprintf("%s/%s.csv", m.KeyPrefix(datasetID), split.Name)

	_, _, err = retry.Run(ctx, uploadInitBackoff, uploadMaxBackoff, uploadMaxAttempts, func() (any, bool, error) {
		if err := m.store.PutObject(ctx, m.bucket, objectKey, digest, bytes.NewReader(data)); err != nil {
			return nil, !objectstorage.NeedRetry(err), err
		}
		return nil, false, nil
	})
	if err != nil {
		return objectstorage.ObjectRef{}, errors.Wrapf(err, "upload %s", objectKey)
	}

	logger.Infof("uploaded split %s of dataset %s to %s/%s, digest:%s", split.Name, datasetID, m.bucket, objectKey, digest)
	return objectstorage.ObjectRef{Bucket: m.bucket, Key: objectKey}, nil
}
