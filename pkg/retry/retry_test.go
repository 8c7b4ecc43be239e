package retry

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	testifyassert "github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		f           func(calls *int) (any, bool, error)
		wantCalls   int
		wantErr     bool
		wantCancel  bool
	}{
		{
			name:        "succeeds first attempt",
			maxAttempts: 3,
			f: func(calls *int) (any, bool, error) {
				return "ok", false, nil
			},
			wantCalls: 1,
		},
		{
			name:        "retries until success",
			maxAttempts: 5,
			f: func(calls *int) (any, bool, error) {
				if *calls < 3 {
					return nil, false, errors.New("transient")
				}
				return "ok", false, nil
			},
			wantCalls: 3,
		},
		{
			name:        "exhausts attempts",
			maxAttempts: 3,
			f: func(calls *int) (any, bool, error) {
				return nil, false, errors.New("transient")
			},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:        "cancel stops retrying",
			maxAttempts: 5,
			f: func(calls *int) (any, bool, error) {
				return nil, true, errors.New("permanent")
			},
			wantCalls:  1,
			wantErr:    true,
			wantCancel: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			calls := 0
			res, cancel, err := Run(context.Background(), 0.001, 0.002, tc.maxAttempts, func() (any, bool, error) {
				calls++
				return tc.f(&calls)
			})

			assert.Equal(tc.wantCalls, calls)
			assert.Equal(tc.wantCancel, cancel)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal("ok", res)
		})
	}
}

func TestRunContextCanceled(t *testing.T) {
	assert := testifyassert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, 0.001, 0.002, 3, func() (any, bool, error) {
		return nil, false, errors.New("transient")
	})
	assert.ErrorIs(err, context.Canceled)
}
