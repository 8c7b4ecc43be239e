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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/zhangshuiyong/urchin-train/internal/logger"
	"github.com/zhangshuiyong/urchin-train/pkg/config"
)

var rootDescription = "urtrain is a daemonless client for training off-the-shelf algorithms on tabular datasets."

// cfg holds the effective configuration shared by all subcommands.
var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:                "urtrain <command> [flags]",
	Short:              rootDescription,
	Long:               rootDescription,
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			logger.SetLevel(zapcore.DebugLevel)
		}

		if path := viper.GetString("config"); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		// Flags override file values.
		if region := viper.GetString("region"); region != "" {
			cfg.Region = region
		}
		if bucket := viper.GetString("bucket"); bucket != "" {
			cfg.ObjectStorage.Bucket = bucket
		}

		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file path, yaml format")
	flags.Bool("verbose", false, "enable debug logging")
	flags.String("region", cfg.Region, "platform region used for container resolution, e.g. us-east-1")
	flags.String("bucket", cfg.ObjectStorage.Bucket, "default bucket for datasets and artifacts")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
