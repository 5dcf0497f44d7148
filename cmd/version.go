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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/pkg/version"
)

// versionCmd represents the modres command for version.
var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "A command line tool for modres version",
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

// init initializes version command.
func init() {
	flags := versionCmd.Flags()

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind version flags to viper: %w", err))
	}
}

// runVersion runs the version modres.
func runVersion() error {
	info := version.Get()
	return render(info, func(w io.Writer) {
		fmt.Fprintf(w, "Version:\t%s\n", info.Version)
		fmt.Fprintf(w, "Commit:\t%s\n", info.Commit)
		fmt.Fprintf(w, "Platform:\t%s\n", info.Platform)
		fmt.Fprintf(w, "BuildTime:\t%s\n", info.BuildTime)
		fmt.Fprintf(w, "GoVersion:\t%s\n", info.GoVersion)
	})
}
