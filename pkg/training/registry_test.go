package training

import (
	"testing"

	testifyassert "github.com/stretchr/testify/assert"
)

func TestResolveContainer(t *testing.T) {
	tests := []struct {
		name      string
		algorithm Algorithm
		region    string
		version   string
		want      string
		wantErr   bool
	}{
		{
			name:      "xgboost in us-east-1",
			algorithm: AlgorithmXGBoost,
			region:    "us-east-1",
			version:   "1",
			want:      "811284229777.dkr.ecr.us-east-1.amazonaws.com/xgboost:1",
		},
		{
			name:      "linear learner in eu-west-1",
			algorithm: AlgorithmLinearLearner,
			region:    "eu-west-1",
			version:   "latest",
			want:      "685385470294.dkr.ecr.eu-west-1.amazonaws.com/linear-learner:latest",
		},
		{
			name:      "empty version falls back to default",
			algorithm: AlgorithmXGBoost,
			region:    "us-west-2",
			want:      "433757028032.dkr.ecr.us-west-2.amazonaws.com/xgboost:1",
		},
		{
			name:      "unknown region",
			algorithm: AlgorithmXGBoost,
			region:    "mars-north-1",
			version:   "1",
			wantErr:   true,
		},
		{
			name:      "unsupported version",
			algorithm: AlgorithmXGBoost,
			region:    "us-east-1",
			version:   "0.9",
			wantErr:   true,
		},
		{
			name:      "unsupported algorithm",
			algorithm: Algorithm("random-forest"),
			region:    "us-east-1",
			version:   "1",
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := testifyassert.New(t)

			image, err := ResolveContainer(tc.algorithm, tc.region, tc.version)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.want, image)
		})
	}
}
