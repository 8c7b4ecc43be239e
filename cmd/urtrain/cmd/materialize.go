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

var materializeDescription = "materialize a dataset's train and validation splits and upload them to object storage."

var materializeCmd = &cobra.Command{
	Use:                "materialize <dataset-id> <train-csv> <validation-csv> [flags]",
	Short:              materializeDescription,
	Long:               materializeDescription,
	Args:               cobra.ExactArgs(3),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		if scratchRoot := viper.GetString("scratch-root"); scratchRoot != "" {
			cfg.ScratchRoot = scratchRoot
		}

		sess, err := newSession()
		if err != nil {
			return err
		}

		_, materializer, err := newMaterializer(sess)
		if err != nil {
			return err
		}

		train, validation, err := loadSplits(args[1], args[2])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		trainRef, err := materializer.Upload(ctx, args[0], train)
		if err != nil {
			return err
		}
		validationRef, err := materializer.Upload(ctx, args[0], validation)
		if err != nil {
			return err
		}

		fmt.Printf("materialize dataset successful, train:%s validation:%s\n", trainRef.URL(), validationRef.URL())
		return nil
	},
}

func init() {
	flags := materializeCmd.Flags()
	flags.String("scratch-root", cfg.ScratchRoot, "local scratch directory for materialized splits")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(materializeCmd)
}
