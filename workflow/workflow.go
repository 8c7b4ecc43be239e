// Package workflow chains dataset materialization, job launch and artifact
// retrieval into one training run.
package workflow

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/zhangshuiyong/urchin-train/pkg/artifact"
	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
	"github.com/zhangshuiyong/urchin-train/pkg/pipeline"
	"github.com/zhangshuiyong/urchin-train/pkg/session"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
)

// KeyDatasetID is the KeyVal entry carrying the dataset id between steps.
const KeyDatasetID = "dataset_id"

// Params describes one training run.
type Params struct {
	// DatasetID names the dataset, e.g. "boston".
	DatasetID string

	// Algorithm is the off-the-shelf algorithm to train.
	Algorithm training.Algorithm

	// Train and Validation are the splits that participate in training.
	// The test split stays local and is never part of a run.
	Train      *dataset.Split
	Validation *dataset.Split

	// ArtifactDir is where the model artifact lands locally.
	ArtifactDir string
}

// Result is the outcome of one completed run.
type Result struct {
	// Job is the handle of the submitted job.
	Job *training.Job

	// ArtifactPath is the local path of the downloaded model artifact.
	ArtifactPath string
}

// Workflow drives one run through a three step pipeline. Steps execute
// sequentially with a single request in flight, matching the sequential
// semantics of the underlying calls.
type Workflow struct {
	sess         *session.Session
	materializer *dataset.Materializer
	launcher     *training.Launcher
	retriever    *artifact.Retriever
	options      *Options
}

type Options struct {
	// WaitInterval is the completion poll interval. The launch itself is
	// non-blocking; the workflow polls before retrieval so the artifact
	// listing never races the job.
	WaitInterval time.Duration

	// JobConfig options forwarded to the config builder.
	JobConfig []training.JobConfigOptionFunc
}

type OptionFunc func(options *Options)

func WithWaitInterval(interval time.Duration) OptionFunc {
	return func(options *Options) {
		options.WaitInterval = interval
	}
}

func WithJobConfigOptions(option ...training.JobConfigOptionFunc) OptionFunc {
	return func(options *Options) {
		options.JobConfig = append(options.JobConfig, option...)
	}
}

// New returns a workflow over the given collaborators.
func New(sess *session.Session, materializer *dataset.Materializer, launcher *training.Launcher, retriever *artifact.Retriever, option ...OptionFunc) *Workflow {
	w := &Workflow{
		sess:         sess,
		materializer: materializer,
		launcher:     launcher,
		retriever:    retriever,
		options: &Options{
			WaitInterval: 5 * time.Second,
		},
	}
	for _, o := range option {
		o(w.options)
	}

	return w
}

// Run executes one training run and returns once the artifact is local.
func (w *Workflow) Run(ctx context.Context, params *Params) (*Result, error) {
	if params.DatasetID == "" {
		return nil, errors.New("run requires a dataset id")
	}

	if params.Train == nil || params.Validation == nil {
		return nil, errors.New("run requires train and validation splits")
	}

	if err := params.Algorithm.Validate(); err != nil {
		return nil, err
	}

	p := pipeline.NewPipeline(
		NewMaterializingStep(w.materializer),
		NewLaunchingStep(w.sess, w.materializer, w.launcher, w.options),
		NewRetrievingStep(w.retriever),
	)

	res, err := p.Exec(ctx, &pipeline.Request{
		Data: params,
		KeyVal: map[string]interface{}{
			KeyDatasetID: params.DatasetID,
		},
	})
	if err != nil {
		return nil, err
	}

	result, ok := res.Data.(*Result)
	if !ok {
		return nil, errors.New("workflow produced an unexpected result payload")
	}

	return result, nil
}
