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

package pipeline

import (
	"context"

	"github.com/pkg/errors"
)

// Request is the unit of data flowing between steps.
type Request struct {
	// Data is the step payload.
	Data interface{}

	// KeyVal carries cross-step metadata.
	KeyVal map[string]interface{}
}

// Step is one stage of a pipeline. Serve reads requests from in until it is
// drained, writes results to out and returns when done. A step owns closing
// its out channel.
type Step interface {
	// GetStepName returns the step name for diagnostics.
	GetStepName() string

	// Serve processes requests from in and emits results to out.
	Serve(ctx context.Context, in chan *Request, out chan *Request) error
}

// StepInfra carries the common step plumbing, embedded by concrete steps.
type StepInfra struct {
	name string
	call func(ctx context.Context, in chan *Request, out chan *Request) error
}

// GetStepName returns the step name.
func (s *StepInfra) GetStepName() string {
	return s.name
}

// Serve interface.
func (s *StepInfra) Serve(ctx context.Context, in chan *Request, out chan *Request) error {
	return s.call(ctx, in, out)
}

// New returns step infra with the given name and call function.
func New(name string, call func(ctx context.Context, in chan *Request, out chan *Request) error) *StepInfra {
	return &StepInfra{
		name: name,
		call: call,
	}
}

// Pipeline chains steps with channels, one request in flight per step.
type Pipeline struct {
	steps []Step
}

// NewPipeline returns a pipeline over the given steps, executed in order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{
		steps: steps,
	}
}

// Exec pushes req through all steps and returns the final request emitted by
// the last step. The first step error cancels the remaining steps.
func (p *Pipeline) Exec(ctx context.Context, req *Request) (*Request, error) {
	if len(p.steps) == 0 {
		return nil, errors.New("pipeline has no steps")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	source := make(chan *Request, 1)
	source <- req
	close(source)

	errCh := make(chan error, len(p.steps))
	in := source
	for _, step := range p.steps {
		out := make(chan *Request, 1)
		go func(step Step, in chan *Request, out chan *Request) {
			defer close(out)
			if err := step.Serve(ctx, in, out); err != nil {
				errCh <- errors.Wrapf(err, "step %s", step.GetStepName())
				cancel()
			}
		}(step, in, out)
		in = out
	}

	var last *Request
	for val := range in {
		last = val
	}

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if last == nil {
		return nil, errors.New("pipeline produced no result")
	}

	return last, nil
}
