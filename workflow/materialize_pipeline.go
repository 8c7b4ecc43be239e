package workflow

import (
	"context"
	"fmt"

	"github.com/zhangshuiyong/urchin-train/pkg/dataset"
	"github.com/zhangshuiyong/urchin-train/pkg/pipeline"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
)

// launchSource is the payload handed from materialization to launch.
type launchSource struct {
	params     *Params
	train      training.Input
	validation training.Input
}

type Materializing struct {
	materializer *dataset.Materializer
	*pipeline.StepInfra
}

// GetSource actually function.
func (m *Materializing) GetSource(ctx context.Context, req *pipeline.Request) (*pipeline.Request, error) {
	params := req.Data.(*Params)

	trainRef, err := m.materializer.Upload(ctx, params.DatasetID, params.Train)
	if err != nil {
		return nil, err
	}

	validationRef, err := m.materializer.Upload(ctx, params.DatasetID, params.Validation)
	if err != nil {
		return nil, err
	}

	return &pipeline.Request{
		Data: &launchSource{
			params:     params,
			train:      training.NewInput(trainRef, training.ContentTypeCSV),
			validation: training.NewInput(validationRef, training.ContentTypeCSV),
		},
		KeyVal: req.KeyVal,
	}, nil
}

func (m *Materializing) serve(ctx context.Context, req *pipeline.Request, out chan *pipeline.Request) error {
	source, err := m.GetSource(ctx, req)
	if err != nil {
		return err
	}

	out <- source
	return nil
}

func (m *Materializing) MaterializeCall(ctx context.Context, in chan *pipeline.Request, out chan *pipeline.Request) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("materializing process has been canceled")
		case val := <-in:
			if val == nil {
				return nil
			}
			err := m.serve(ctx, val, out)
			if err != nil {
				return err
			}
		}
	}
}

func NewMaterializingStep(materializer *dataset.Materializer) pipeline.Step {
	m := Materializing{materializer: materializer}
	m.StepInfra = pipeline.New("Materializing", m.MaterializeCall)
	return &m
}
