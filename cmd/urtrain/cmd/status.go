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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusDescription = "check a training job running status."

var statusCmd = &cobra.Command{
	Use:                "status <job-name> [flags]",
	Short:              statusDescription,
	Long:               statusDescription,
	Args:               cobra.ExactArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		status, err := newTrainingClient(sess).DescribeTrainingJob(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("get training job status successful, job:%s state:%s", status.JobName, status.State)
		if status.Message != "" {
			fmt.Printf(" message:%s", status.Message)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	if err := viper.BindPFlags(statusCmd.Flags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(statusCmd)
}
