package artifact

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	testifyassert "github.com/stretchr/testify/assert"

	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

func testStore(t *testing.T) objectstorage.ObjectStorage {
	t.Helper()

	store, err := objectstorage.New(objectstorage.ServiceNameInMemory, "", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRetrieverListEmpty(t *testing.T) {
	assert := testifyassert.New(t)

	r := NewRetriever(testStore(t))
	_, err := r.List(context.Background(), objectstorage.ObjectRef{Bucket: "models", Key: "job-1/output"})
	assert.ErrorIs(err, ErrNoArtifacts)
}

func TestRetrieverDownloadLatest(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	store := testStore(t)
	assert.NoError(store.PutObject(ctx, "models", "job-1/output/metrics.json", "", strings.NewReader("{}")))
	assert.NoError(store.PutObject(ctx, "models", "job-1/output/model.tar.gz", "", strings.NewReader("model-bytes")))
	// Another job under a sibling prefix must not leak into the listing.
	assert.NoError(store.PutObject(ctx, "models", "job-2/output/model.tar.gz", "", strings.NewReader("other")))

	dir := t.TempDir()
	r := NewRetriever(store)

	path, err := r.DownloadLatest(ctx, objectstorage.ObjectRef{Bucket: "models", Key: "job-1/output"}, dir)
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "model.tar.gz"), path)

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Equal("model-bytes", string(data))

	// Overwrites on conflict.
	path, err = r.DownloadLatest(ctx, objectstorage.ObjectRef{Bucket: "models", Key: "job-1/output"}, dir)
	assert.NoError(err)
	data, err = os.ReadFile(path)
	assert.NoError(err)
	assert.Equal("model-bytes", string(data))
}

func TestRetrieverDownloadAll(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	store := testStore(t)
	assert.NoError(store.PutObject(ctx, "models", "job-1/output/model.tar.gz", "", strings.NewReader("model-bytes")))
	assert.NoError(store.PutObject(ctx, "models", "job-1/output/metrics.json", "", strings.NewReader("{}")))

	dir := t.TempDir()
	r := NewRetriever(store)

	paths, err := r.DownloadAll(ctx, objectstorage.ObjectRef{Bucket: "models", Key: "job-1/output"}, dir)
	assert.NoError(err)
	assert.Len(paths, 2)

	for _, path := range paths {
		info, err := os.Stat(path)
		assert.NoError(err)
		assert.Greater(info.Size(), int64(0))
	}
}
