/*
 *     Copyright 2025 The CNAI Authors
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
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/pkg/config"
)

var rootConfig *config.Root
var logFile *os.File

// rootCmd represents the modres command.
var rootCmd = &cobra.Command{
	Use:                "modres",
	Short:              "A command line tool for resolving model artifacts, compute devices and sequence length metadata",
	Args:               cobra.MaximumNArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Environment variables fill in flags that were not set.
		rootConfig.CacheDir = viper.GetString("cache-dir")
		rootConfig.LogDir = viper.GetString("log-dir")
		rootConfig.LogLevel = viper.GetString("log-level")
		rootConfig.Output = viper.GetString("output")
		rootConfig.DisableProgress = viper.GetBool("no-progress")

		if err := rootConfig.Validate(); err != nil {
			return err
		}

		// Ensure log directory exists.
		if err := os.MkdirAll(rootConfig.LogDir, 0755); err != nil {
			return err
		}

		var err error
		logFile, err = os.OpenFile(filepath.Join(rootConfig.LogDir, "modres.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}

		logLevel, err := logrus.ParseLevel(rootConfig.LogLevel)
		if err != nil {
			return err
		}

		logrus.SetOutput(logFile)
		logrus.SetLevel(logLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	var err error
	rootConfig, err = config.NewRoot()
	if err != nil {
		panic(err)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfig.CacheDir, "cache-dir", rootConfig.CacheDir, "specify the directory checkpoint metadata is fetched to")
	flags.BoolVar(&rootConfig.DisableProgress, "no-progress", rootConfig.DisableProgress, "disable progress bar")
	flags.StringVar(&rootConfig.LogDir, "log-dir", rootConfig.LogDir, "specify the log directory for modres")
	flags.StringVar(&rootConfig.LogLevel, "log-level", rootConfig.LogLevel, "specify the log level for modres")
	flags.StringVarP(&rootConfig.Output, "output", "o", rootConfig.Output, "specify the output format: text, json or yaml")

	viper.SetEnvPrefix("MODRES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Bind common flags.
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	// Add sub command.
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(lengthCmd)
	rootCmd.AddCommand(providersCmd)
}
