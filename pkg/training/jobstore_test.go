package training

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	testifyassert "github.com/stretchr/testify/assert"
)

func testJobStore(t *testing.T) *JobStore {
	t.Helper()

	s := miniredis.RunT(t)
	store := NewJobStore([]string{s.Addr()}, "", false)
	if store == nil {
		t.Fatal("job store is nil")
	}
	return store
}

func TestJobStoreRecordGet(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	store := testJobStore(t)

	record := &JobRecord{
		Name:         "boston-gradient-boosted-trees-20230601-120000-abcd1234",
		DatasetID:    "boston",
		Algorithm:    AlgorithmXGBoost,
		OutputBucket: "models",
		OutputKey:    "boston-deploy-hl/output/boston-gradient-boosted-trees-20230601-120000-abcd1234/output",
		SubmittedAt:  time.Now().UTC(),
	}
	assert.NoError(store.Record(ctx, record))

	got, err := store.Get(ctx, record.Name)
	assert.NoError(err)
	assert.Equal(record.Name, got.Name)
	assert.Equal(record.DatasetID, got.DatasetID)
	assert.Equal("models", got.Output().Bucket)

	_, err = store.Get(ctx, "no-such-job")
	assert.ErrorIs(err, ErrJobNotFound)
}

func TestJobStoreLatestForDataset(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	store := testJobStore(t)

	base := time.Now().UTC()
	for i, name := range []string{"job-a", "job-b", "job-c"} {
		assert.NoError(store.Record(ctx, &JobRecord{
			Name:        name,
			DatasetID:   "boston",
			Algorithm:   AlgorithmXGBoost,
			SubmittedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	latest, err := store.LatestForDataset(ctx, "boston")
	assert.NoError(err)
	assert.Equal("job-c", latest.Name)

	_, err = store.LatestForDataset(ctx, "iris")
	assert.ErrorIs(err, ErrJobNotFound)
}

func TestNewJobStoreNoEndpoints(t *testing.T) {
	assert := testifyassert.New(t)
	assert.Nil(NewJobStore(nil, "", false))
}
