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

package training

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultContainerVersion is the container tag used when the caller does not
// pin one.
const DefaultContainerVersion = "1"

// registryAccounts maps region to the registry account hosting the execution
// containers for that region.
var registryAccounts = map[string]string{
	"us-east-1":      "811284229777",
	"us-east-2":      "825641698319",
	"us-west-2":      "433757028032",
	"eu-west-1":      "685385470294",
	"ap-northeast-1": "501404015308",
}

// containerRepositories maps algorithm to its container repository name.
var containerRepositories = map[Algorithm]string{
	AlgorithmXGBoost:       "xgboost",
	AlgorithmLinearLearner: "linear-learner",
}

// supportedContainerVersions is per-repository; lookups outside this set
// fail before submission.
var supportedContainerVersions = map[string]struct{}{
	"1":      {},
	"latest": {},
}

// ResolveContainer maps (algorithm, region, version) to a versioned execution
// container reference. An identifier, region or version outside the
// registry's coverage is fatal and surfaced to the caller.
func ResolveContainer(algorithm Algorithm, region, version string) (string, error) {
	if err := algorithm.Validate(); err != nil {
		return "", err
	}

	account, ok := registryAccounts[region]
	if !ok {
		return "", errors.Errorf("no execution container registry for region %s", region)
	}

	repository, ok := containerRepositories[algorithm]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedAlgorithm, "%s", algorithm)
	}

	if version == "" {
		version = DefaultContainerVersion
	}
	if _, ok := supportedContainerVersions[version]; !ok {
		return "", errors.Errorf("container version %s is not supported for %s in %s", version, algorithm, region)
	}

	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com/%s:%s", account, region, repository, version), nil
}
