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

package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrainingJobName builds a unique, human-scannable job name from the dataset
// id and algorithm. The timestamp keeps listings sortable by submit time, the
// uuid fragment avoids collisions between submissions in the same second.
func TrainingJobName(datasetID, algorithm string) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s-%s", datasetID, algorithm, time.Now().UTC().Format("20060102-150405"), short)
}
