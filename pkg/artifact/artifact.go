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

// Package artifact lists and downloads the model artifacts a completed
// training job left under its output location.
package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"

	mr "github.com/kevwan/mapreduce/v2"
	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

// ErrNoArtifacts reports an output location with nothing under it, e.g. when
// the job has not completed yet.
var ErrNoArtifacts = errors.New("no artifacts under output location")

// Retriever downloads artifacts by explicit output reference. Callers pass a
// job-scoped prefix, so selection never depends on listing order across
// jobs.
type Retriever struct {
	store objectstorage.ObjectStorage
}

// NewRetriever returns a retriever over the storage client.
func NewRetriever(store objectstorage.ObjectStorage) *Retriever {
	return &Retriever{
		store: store,
	}
}

// List returns the artifacts under the output prefix. An empty listing is an
// explicit error rather than a silent empty result.
func (r *Retriever) List(ctx context.Context, output objectstorage.ObjectRef) ([]*objectstorage.ObjectMetadata, error) {
	metadatas, err := r.store.ListFolderObjects(ctx, output.Bucket, output.Key)
	if err != nil {
		return nil, errors.Wrapf(err, "list artifacts under %s", output.URL())
	}

	if len(metadatas) == 0 {
		return nil, errors.Wrapf(ErrNoArtifacts, "%s", output.URL())
	}

	return metadatas, nil
}

// Download fetches one object to localPath, overwriting any existing file.
func (r *Retriever) Download(ctx context.Context, ref objectstorage.ObjectRef, localPath string) error {
	reader, err := r.store.GetOject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return errors.Wrapf(err, "get %s", ref.URL())
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}

	fd, err := os.Create(localPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(fd, reader); err != nil {
		fd.Close()
		return errors.Wrapf(err, "write %s", localPath)
	}

	logger.Infof("downloaded artifact %s to %s", ref.URL(), localPath)
	return fd.Close()
}

// DownloadLatest fetches the last artifact under the output prefix, in the
// backend's lexicographic listing order, into dir. Returns the local path.
func (r *Retriever) DownloadLatest(ctx context.Context, output objectstorage.ObjectRef, dir string) (string, error) {
	metadatas, err := r.List(ctx, output)
	if err != nil {
		return "", err
	}

	selected := metadatas[len(metadatas)-1]
	localPath := filepath.Join(dir, filepath.Base(selected.Key))
	if err := r.Download(ctx, objectstorage.ObjectRef{Bucket: output.Bucket, Key: selected.Key}, localPath); err != nil {
		return "", err
	}

	return localPath, nil
}

// DownloadAll fetches every artifact under the output prefix into dir,
// keeping the key structure flat. Downloads run concurrently.
func (r *Retriever) DownloadAll(ctx context.Context, output objectstorage.ObjectRef, dir string) ([]string, error) {
	metadatas, err := r.List(ctx, output)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(metadatas))
	fns := make([]func() error, len(metadatas))
	for i, meta := range metadatas {
		i, meta := i, meta
		fns[i] = func() error {
			localPath := filepath.Join(dir, filepath.Base(meta.Key))
			if err := r.Download(ctx, objectstorage.ObjectRef{Bucket: output.Bucket, Key: meta.Key}, localPath); err != nil {
				return err
			}
			paths[i] = localPath
			return nil
		}
	}

	if err := mr.Finish(fns...); err != nil {
		return nil, err
	}

	return paths, nil
}
