package workflow

import (
	"context"
	"fmt"

	"github.com/zhangshuiyong/urchin-train/pkg/artifact"
	"github.com/zhangshuiyong/urchin-train/pkg/pipeline"
)

type Retrieving struct {
	retriever *artifact.Retriever
	*pipeline.StepInfra
}

// GetSource actually function.
func (r *Retrieving) GetSource(ctx context.Context, req *pipeline.Request) (*pipeline.Request, error) {
	source := req.Data.(*retrieveSource)

	path, err := r.retriever.DownloadLatest(ctx, source.job.Output, source.params.ArtifactDir)
	if err != nil {
		return nil, err
	}

	return &pipeline.Request{
		Data: &Result{
			Job:          source.job,
			ArtifactPath: path,
		},
		KeyVal: req.KeyVal,
	}, nil
}

func (r *Retrieving) serve(ctx context.Context, req *pipeline.Request, out chan *pipeline.Request) error {
	source, err := r.GetSource(ctx, req)
	if err != nil {
		return err
	}

	out <- source
	return nil
}

func (r *Retrieving) RetrieveCall(ctx context.Context, in chan *pipeline.Request, out chan *pipeline.Request) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retrieving process has been canceled")
		case val := <-in:
			if val == nil {
				return nil
			}
			err := r.serve(ctx, val, out)
			if err != nil {
				return err
			}
		}
	}
}

func NewRetrievingStep(retriever *artifact.Retriever) pipeline.Step {
	r := Retrieving{retriever: retriever}
	r.StepInfra = pipeline.New("Retrieving", r.RetrieveCall)
	return &r
}
