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

	"github.com/uni-industries/txtai-fork/pkg/format"
)

// detectCmd represents the modres command for detect.
var detectCmd = &cobra.Command{
	Use:                "detect [flags] <artifact>...",
	Short:              "Detect classifies artifacts as serialized graphs or hub checkpoints and sniffs file headers.",
	Args:               cobra.MinimumNArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect(args)
	},
}

// init initializes detect command.
func init() {
	flags := detectCmd.Flags()

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind detect flags to viper: %w", err))
	}
}

// runDetect runs the detect modres.
func runDetect(artifacts []string) error {
	reports := make([]format.Report, 0, len(artifacts))
	for _, artifact := range artifacts {
		r, err := format.Sniff(artifact)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}

	return render(reports, func(w io.Writer) {
		fmt.Fprintln(w, "ARTIFACT\tKIND\tSIZE\tONNX HEADER\tONNX NAME")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\n", r.Path, r.Kind, humanize.IBytes(uint64(r.Size)), r.Serialized, r.NameMatch)
		}
	})
}
