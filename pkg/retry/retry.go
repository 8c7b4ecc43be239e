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

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Run calls f up to maxAttempts times with exponential backoff between
// attempts. f returns cancel == true to stop retrying early, e.g. when the
// error is known to be permanent.
func Run(ctx context.Context, initBackoff float64, maxBackoff float64, maxAttempts int, f func() (data any, cancel bool, err error)) (any, bool, error) {
	var (
		res    any
		cancel bool
		cause  error
	)

	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(backoff(i, initBackoff, maxBackoff)):
			}
		}

		res, cancel, cause = f()
		if cause == nil || cancel {
			break
		}
	}

	return res, cancel, cause
}

// backoff returns the wait duration before attempt n, jittered to avoid
// synchronized retries.
func backoff(n int, initBackoff float64, maxBackoff float64) time.Duration {
	if initBackoff <= 0 {
		initBackoff = 0.1
	}

	wait := initBackoff * math.Pow(2, float64(n-1))
	if wait > maxBackoff {
		wait = maxBackoff
	}
	wait = wait/2 + rand.Float64()*wait/2

	return time.Duration(wait * float64(time.Second))
}
