package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	testifyassert "github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/zhangshuiyong/urchin-train/pkg/artifact"
	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
	"github.com/zhangshuiyong/urchin-train/pkg/pipeline"
	"github.com/zhangshuiyong/urchin-train/pkg/session"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
)

// Every workflow step must be usable by the pipeline executor.
var (
	_ pipeline.Step = (*Materializing)(nil)
	_ pipeline.Step = (*Launching)(nil)
	_ pipeline.Step = (*Retrieving)(nil)
)

// fakePlatform is a gin-backed training service that writes a model artifact
// into object storage when a job completes, the way the managed platform
// does.
type fakePlatform struct {
	mu       sync.Mutex
	store    objectstorage.ObjectStorage
	jobs     map[string]*training.CreateTrainingJobRequest
	describe map[string]int
}

func newFakePlatform(t *testing.T, store objectstorage.ObjectStorage) *training.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fakePlatform{
		store:    store,
		jobs:     map[string]*training.CreateTrainingJobRequest{},
		describe: map[string]int{},
	}

	r := gin.New()
	r.POST("/api/v1/training/jobs", func(ctx *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req training.CreateTrainingJobRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
			return
		}

		f.jobs[req.JobName] = &req
		ctx.JSON(http.StatusOK, training.CreateTrainingJobResponse{JobName: req.JobName, State: training.JobStateQueued})
	})
	r.GET("/api/v1/training/jobs/:job_name", func(ctx *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		jobName := ctx.Param("job_name")
		req, ok := f.jobs[jobName]
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"errors": "not found"})
			return
		}

		states := []string{training.JobStateQueued, training.JobStateRunning, training.JobStateCompleted}
		n := f.describe[jobName]
		if n >= len(states) {
			n = len(states) - 1
		}
		f.describe[jobName]++

		state := states[n]
		if state == training.JobStateCompleted {
			ref, err := objectstorage.ParseObjectURL(req.OutputLocation)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"errors": err.Error()})
				return
			}
			key := ref.Key + "/model.tar.gz"
			if err := f.store.PutObject(ctx, ref.Bucket, key, "", strings.NewReader("model-bytes")); err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"errors": err.Error()})
				return
			}
		}

		ctx.JSON(http.StatusOK, training.JobStatus{JobName: jobName, State: state})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return training.NewClient(server.URL)
}

func bostonParams(t *testing.T) *Params {
	t.Helper()

	columns := []string{"crim", "rm"}
	train, err := dataset.NewSplit(dataset.SplitTrain, columns,
		mat.NewDense(3, 2, []float64{0.00632, 6.575, 0.02731, 6.421, 0.02729, 7.185}),
		[]float64{24, 21.6, 34.7})
	if err != nil {
		t.Fatal(err)
	}
	validation, err := dataset.NewSplit(dataset.SplitValidation, columns,
		mat.NewDense(2, 2, []float64{0.03237, 6.998, 0.06905, 7.147}),
		[]float64{33.4, 36.2})
	if err != nil {
		t.Fatal(err)
	}

	return &Params{
		DatasetID:   "boston",
		Algorithm:   training.AlgorithmXGBoost,
		Train:       train,
		Validation:  validation,
		ArtifactDir: t.TempDir(),
	}
}

func testWorkflow(t *testing.T) (*Workflow, objectstorage.ObjectStorage, string) {
	t.Helper()

	store, err := objectstorage.New(objectstorage.ServiceNameInMemory, "", "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	sess := &session.Session{
		Region:      "us-east-1",
		Bucket:      "models",
		StorageName: objectstorage.ServiceNameInMemory,
	}

	scratch := t.TempDir()
	materializer := dataset.NewMaterializer(store, sess.Bucket, dataset.WithScratchRoot(scratch))
	launcher := training.NewLauncher(newFakePlatform(t, store))
	retriever := artifact.NewRetriever(store)

	w := New(sess, materializer, launcher, retriever, WithWaitInterval(time.Millisecond))
	return w, store, scratch
}

func TestWorkflowRun(t *testing.T) {
	assert := testifyassert.New(t)
	ctx := context.Background()

	w, store, scratch := testWorkflow(t)
	params := bostonParams(t)

	result, err := w.Run(ctx, params)
	assert.NoError(err)
	assert.NotNil(result.Job)
	assert.Contains(result.Job.Output.Key, result.Job.Name)

	// Splits landed on local scratch before upload.
	for _, name := range []string{"train.csv", "validation.csv"} {
		_, err := os.Stat(filepath.Join(scratch, "boston", name))
		assert.NoError(err)
	}

	// Splits landed in object storage under the dataset prefix.
	for _, key := range []string{"boston-deploy-hl/train.csv", "boston-deploy-hl/validation.csv"} {
		exist, err := store.IsObjectExist(ctx, "models", key)
		assert.NoError(err)
		assert.True(exist)
	}

	// The artifact is local and holds the bytes the platform wrote.
	assert.Equal(filepath.Join(params.ArtifactDir, "model.tar.gz"), result.ArtifactPath)
	data, err := os.ReadFile(result.ArtifactPath)
	assert.NoError(err)
	assert.Equal("model-bytes", string(data))
}

func TestWorkflowRunInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(params *Params)
	}{
		{
			name: "missing dataset id",
			mutate: func(params *Params) {
				params.DatasetID = ""
			},
		},
		{
			name: "missing validation split",
			mutate: func(params *Params) {
				params.Validation = nil
			},
		},
		{
			name: "unsupported algorithm",
			mutate: func(params *Params) {
				params.Algorithm = training.Algorithm("random-forest")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			w, _, _ := testWorkflow(t)
			params := bostonParams(t)
			tc.mutate(params)

			_, err := w.Run(context.Background(), params)
			assert.Error(err)
		})
	}
}

func TestWorkflowRunTestSplitRefused(t *testing.T) {
	assert := testifyassert.New(t)

	w, _, _ := testWorkflow(t)
	params := bostonParams(t)
	params.Train.Name = dataset.SplitTest

	_, err := w.Run(context.Background(), params)
	assert.Error(err)
	assert.Contains(err.Error(), "not uploaded for training")
}
