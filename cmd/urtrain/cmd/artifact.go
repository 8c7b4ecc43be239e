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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhangshuiyong/urchin-train/pkg/artifact"
	"github.com/zhangshuiyong/urchin-train/pkg/objectstorage"
)

var artifactDescription = "download the model artifacts of a dataset's most recent training job."

var artifactCmd = &cobra.Command{
	Use:                "artifact <dataset-id> [flags]",
	Short:              artifactDescription,
	Long:               artifactDescription,
	Args:               cobra.ExactArgs(1),
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

		// The output location is derived from the job identity, never from
		// listing order, so concurrent jobs of the same dataset cannot be
		// confused with each other.
		var output objectstorage.ObjectRef
		if jobName := viper.GetString("job-name"); jobName != "" {
			output = objectstorage.ObjectRef{
				Bucket: sess.Bucket,
				Key:    fmt.Sprintf("%s/output/%s/output", materializer.KeyPrefix(args[0]), jobName),
			}
		} else {
			jobStore := newJobStore()
			if jobStore == nil {
				return errors.New("resolving the most recent job requires redis, or pass --job-name")
			}

			record, err := jobStore.LatestForDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output = record.Output()
		}

		retriever := artifact.NewRetriever(store)
		outputDir := viper.GetString("output-dir")

		if viper.GetBool("all") {
			paths, err := retriever.DownloadAll(cmd.Context(), output, outputDir)
			if err != nil {
				return err
			}

			fmt.Printf("download artifacts successful, paths:%s\n", strings.Join(paths, ","))
			return nil
		}

		path, err := retriever.DownloadLatest(cmd.Context(), output, outputDir)
		if err != nil {
			return err
		}

		fmt.Printf("download artifact successful, path:%s\n", path)
		return nil
	},
}

func init() {
	flags := artifactCmd.Flags()
	flags.String("job-name", "", "download from this job instead of the dataset's most recent one")
	flags.StringP("output-dir", "o", ".", "local directory for the downloaded artifacts")
	flags.Bool("all", false, "download every object under the job output location")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(artifactCmd)
}
