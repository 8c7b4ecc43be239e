package pipeline

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	testifyassert "github.com/stretchr/testify/assert"
)

func passthroughStep(name string, f func(val *Request) (*Request, error)) Step {
	return New(name, func(ctx context.Context, in chan *Request, out chan *Request) error {
		for {
			select {
			case <-ctx.Done():
				return errors.Errorf("%s process has been canceled", name)
			case val := <-in:
				if val == nil {
					return nil
				}
				res, err := f(val)
				if err != nil {
					return err
				}
				out <- res
			}
		}
	})
}

func TestPipelineExec(t *testing.T) {
	assert := testifyassert.New(t)

	double := passthroughStep("double", func(val *Request) (*Request, error) {
		return &Request{Data: val.Data.(int) * 2, KeyVal: val.KeyVal}, nil
	})
	inc := passthroughStep("inc", func(val *Request) (*Request, error) {
		return &Request{Data: val.Data.(int) + 1, KeyVal: val.KeyVal}, nil
	})

	res, err := NewPipeline(double, inc).Exec(context.Background(), &Request{Data: 20})
	assert.NoError(err)
	assert.Equal(41, res.Data)
}

func TestPipelineExecStepError(t *testing.T) {
	assert := testifyassert.New(t)

	boom := passthroughStep("boom", func(val *Request) (*Request, error) {
		return nil, errors.New("broken payload")
	})
	never := passthroughStep("never", func(val *Request) (*Request, error) {
		t.Fatal("step after failure must not process requests")
		return val, nil
	})

	_, err := NewPipeline(boom, never).Exec(context.Background(), &Request{Data: 1})
	assert.Error(err)
	assert.Contains(err.Error(), "step boom")
}

func TestPipelineExecNoSteps(t *testing.T) {
	assert := testifyassert.New(t)

	_, err := NewPipeline().Exec(context.Background(), &Request{Data: 1})
	assert.Error(err)
}
