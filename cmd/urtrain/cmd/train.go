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

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhangshuiyong/urchin-train/pkg/artifact"
	"github.com/zhangshuiyong/urchin-train/pkg/training"
	"github.com/zhangshuiyong/urchin-train/workflow"
)

var trainDescription = "run one training workflow: upload the splits, launch a managed training job, wait for completion and download the model artifact."

var trainCmd = &cobra.Command{
	Use:                "train <dataset-id> <train-csv> <validation-csv> [flags]",
	Short:              trainDescription,
	Long:               trainDescription,
	Args:               cobra.ExactArgs(3),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		store, materializer, err := newMaterializer(sess)
		if err != nil {
			return err
		}

		train, validation, err := loadSplits(args[1], args[2])
		if err != nil {
			return err
		}

		var jobConfigOptions []training.JobConfigOptionFunc
		if instanceType := viper.GetString("instance-type"); instanceType != "" {
			jobConfigOptions = append(jobConfigOptions, training.WithInstanceType(instanceType))
		}
		if instanceCount := viper.GetInt("instance-count"); instanceCount > 0 {
			jobConfigOptions = append(jobConfigOptions, training.WithInstanceCount(instanceCount))
		}
		if volumeSize := viper.GetString("volume-size"); volumeSize != "" {
			jobConfigOptions = append(jobConfigOptions, training.WithVolumeSize(volumeSize))
		}
		if containerVersion := viper.GetString("container-version"); containerVersion != "" {
			jobConfigOptions = append(jobConfigOptions, training.WithContainerVersion(containerVersion))
		}

		w := workflow.New(sess, materializer, newLauncher(sess), artifact.NewRetriever(store),
			workflow.WithWaitInterval(viper.GetDuration("wait-interval")),
			workflow.WithJobConfigOptions(jobConfigOptions...))

		result, err := w.Run(cmd.Context(), &workflow.Params{
			DatasetID:   args[0],
			Algorithm:   training.Algorithm(viper.GetString("algorithm")),
			Train:       train,
			Validation:  validation,
			ArtifactDir: viper.GetString("artifact-dir"),
		})
		if err != nil {
			return err
		}

		fmt.Printf("training workflow successful, job:%s artifact:%s\n", result.Job.Name, result.ArtifactPath)
		return nil
	},
}

func init() {
	flags := trainCmd.Flags()
	flags.StringP("algorithm", "a", training.AlgorithmXGBoost.String(), "algorithm to train, gradient-boosted-trees or linear-regressor")
	flags.String("instance-type", training.DefaultInstanceType, "compute instance type for the training job")
	flags.Int("instance-count", training.DefaultInstanceCount, "number of training instances")
	flags.String("volume-size", training.DefaultVolumeSize, "attached volume size, e.g. 30GiB")
	flags.String("container-version", training.DefaultContainerVersion, "algorithm container version")
	flags.String("artifact-dir", ".", "local directory for the downloaded model artifact")
	flags.Duration("wait-interval", 5*time.Second, "completion poll interval")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(trainCmd)
}
