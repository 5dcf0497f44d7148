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

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/pkg/config"
	"github.com/uni-industries/txtai-fork/pkg/format"
)

var scanConfig = config.NewScan()

// scanCmd represents the modres command for scan.
var scanCmd = &cobra.Command{
	Use:                "scan [flags] <dir>",
	Short:              "Scan lists the serialized graph files under a directory.",
	Args:               cobra.ExactArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scanConfig.Validate(); err != nil {
			return err
		}

		return runScan(args[0])
	},
}

// init initializes scan command.
func init() {
	flags := scanCmd.Flags()
	flags.StringVar(&scanConfig.Pattern, "pattern", scanConfig.Pattern, "specify the glob pattern of files to list, defaults to "+format.DefaultScanPattern)
	flags.StringSliceVar(&scanConfig.Exclude, "exclude", scanConfig.Exclude, "specify glob patterns of paths to skip")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind scan flags to viper: %w", err))
	}
}

// runScan runs the scan modres.
func runScan(root string) error {
	filter, err := format.NewPathFilter(scanConfig.Exclude...)
	if err != nil {
		return err
	}

	entries, err := format.Scan(root, scanConfig.Pattern, filter)
	if err != nil {
		return err
	}

	return render(entries, func(w io.Writer) {
		fmt.Fprintln(w, "PATH\tSIZE\tONNX\tLARGE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", e.Path, humanize.IBytes(uint64(e.Size)), e.Serialized, e.Large)
		}
	})
}
