package workflow

import (
	"context"
	"fmt"

	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
	"github.com/zhangshuiyong/urchin-train/pkg/pipeline"
	"github.com/zhangshuiyong/urchin-train/pkg/session"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
)

// retrieveSource is the payload handed from launch to retrieval.
type retrieveSource struct {
	params *Params
	job    *training.Job
}

type Launching struct {
	sess         *session.Session
	materializer *dataset.Materializer
	launcher     *training.Launcher
	options      *Options
	*pipeline.StepInfra
}

// GetSource actually function.
func (l *Launching) GetSource(ctx context.Context, req *pipeline.Request) (*pipeline.Request, error) {
	source := req.Data.(*launchSource)
	params := source.params

	hyperparameters, err := training.BuildHyperparameters(params.Algorithm, params.Train)
	if err != nil {
		return nil, err
	}

	outputPrefix := fmt.Sprintf("%s/output", l.materializer.KeyPrefix(params.DatasetID))
	cfg, err := training.NewJobConfig(l.sess, params.Algorithm, hyperparameters, outputPrefix, l.options.JobConfig...)
	if err != nil {
		return nil, err
	}

	job, err := l.launcher.Launch(ctx, params.DatasetID, cfg, source.train, source.validation)
	if err != nil {
		return nil, err
	}

	// Block until the platform reports completion, so the retrieval step
	// never lists an output location the job has not written yet.
	if _, err := job.Wait(ctx, l.options.WaitInterval); err != nil {
		return nil, err
	}

	return &pipeline.Request{
		Data: &retrieveSource{
			params: params,
			job:    job,
		},
		KeyVal: req.KeyVal,
	}, nil
}

func (l *Launching) serve(ctx context.Context, req *pipeline.Request, out chan *pipeline.Request) error {
	source, err := l.GetSource(ctx, req)
	if err != nil {
		return err
	}

	out <- source
	return nil
}

func (l *Launching) LaunchCall(ctx context.Context, in chan *pipeline.Request, out chan *pipeline.Request) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("launching process has been canceled")
		case val := <-in:
			if val == nil {
				return nil
			}
			err := l.serve(ctx, val, out)
			if err != nil {
				return err
			}
		}
	}
}

func NewLaunchingStep(sess *session.Session, materializer *dataset.Materializer, launcher *training.Launcher, options *Options) pipeline.Step {
	l := Launching{
		sess:         sess,
		materializer: materializer,
		launcher:     launcher,
		options:      options,
	}
	l.StepInfra = pipeline.New("Launching", l.LaunchCall)
	return &l
}
