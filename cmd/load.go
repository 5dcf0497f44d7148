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
	"fmt"
	"io"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/internal/pb"
	"github.com/uni-industries/txtai-fork/pkg/checkpoint"
	"github.com/uni-industries/txtai-fork/pkg/config"
	"github.com/uni-industries/txtai-fork/pkg/format"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
	"github.com/uni-industries/txtai-fork/pkg/models"
	"github.com/uni-industries/txtai-fork/pkg/onnx"
)

var loadConfig = config.NewLoad()

// loadCmd represents the modres command for load.
var loadCmd = &cobra.Command{
	Use:                "load [flags] <artifact>",
	Short:              "Load resolves a model file, a hub checkpoint or a local checkpoint directory and prints what was loaded. Use - to read a serialized graph from stdin.",
	Args:               cobra.ExactArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig.Validate(); err != nil {
			return err
		}

		return runLoad(cmd.Context(), args[0])
	},
}

// init initializes load command.
func init() {
	flags := loadCmd.Flags()
	flags.StringVarP(&loadConfig.Task, "task", "t", loadConfig.Task, "specify the task: "+taskNames())
	flags.StringVarP(&loadConfig.Config, "config", "c", loadConfig.Config, "specify the config.json, or its directory, used with serialized graphs")
	flags.StringVarP(&loadConfig.Provider, "provider", "p", loadConfig.Provider, "specify the provider serving checkpoints, skipping detection from the reference")
	flags.StringSliceVar(&loadConfig.Files, "files", loadConfig.Files, "specify extra checkpoint files to fetch alongside the metadata files")
	flags.IntVar(&loadConfig.Concurrency, "concurrency", loadConfig.Concurrency, "specify the number of concurrent metadata downloads")
	flags.BoolVar(&loadConfig.Check, "check-length", loadConfig.Check, "normalize the tokenizer max length from the model config")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind load flags to viper: %w", err))
	}
}

type graphSummary struct {
	Path         string   `json:"path,omitempty" yaml:"path,omitempty"`
	Size         int64    `json:"size" yaml:"size"`
	IRVersion    int64    `json:"ir_version" yaml:"ir_version"`
	Producer     string   `json:"producer" yaml:"producer"`
	OpsetVersion int64    `json:"opset_version" yaml:"opset_version"`
	Inputs       []string `json:"inputs" yaml:"inputs"`
	Outputs      []string `json:"outputs" yaml:"outputs"`
	Ops          []string `json:"ops" yaml:"ops"`
}

type loadResult struct {
	Artifact    string            `json:"artifact" yaml:"artifact"`
	Kind        string            `json:"kind" yaml:"kind"`
	Task        string            `json:"task" yaml:"task"`
	Unsupported bool              `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	Graph       *graphSummary     `json:"graph,omitempty" yaml:"graph,omitempty"`
	Checkpoint  *checkpoint.Model `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	MaxLength   int               `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Config      map[string]any    `json:"config,omitempty" yaml:"config,omitempty"`
}

// runLoad runs the load modres.
func runLoad(ctx context.Context, target string) error {
	var artifact any = target
	if target == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		artifact = data
	}

	var w io.Writer = os.Stderr
	if rootConfig.DisableProgress {
		w = nil
	}
	progress := pb.NewProgressBar(w)

	resolver, err := newLoadResolver(transfer.Options{
		Concurrency: loadConfig.Concurrency,
		Progress:    progress,
	})
	if err != nil {
		progress.Stop()
		return err
	}

	m, err := resolver.Load(ctx, artifact, loadConfig.Config, models.Task(loadConfig.Task))
	progress.Stop()
	if err != nil {
		return err
	}

	result := summarize(target, artifact, m)
	return render(result, func(w io.Writer) {
		fmt.Fprintf(w, "ARTIFACT:\t%s\n", result.Artifact)
		fmt.Fprintf(w, "KIND:\t%s\n", result.Kind)
		fmt.Fprintf(w, "TASK:\t%s\n", result.Task)

		if result.Unsupported {
			fmt.Fprintf(w, "RESULT:\tunsupported task, identifier returned unchanged\n")
		}

		if g := result.Graph; g != nil {
			fmt.Fprintf(w, "IR VERSION:\t%d\n", g.IRVersion)
			fmt.Fprintf(w, "PRODUCER:\t%s\n", g.Producer)
			fmt.Fprintf(w, "OPSET:\t%d\n", g.OpsetVersion)
			fmt.Fprintf(w, "SIZE:\t%s\n", humanize.IBytes(uint64(g.Size)))
			fmt.Fprintf(w, "INPUTS:\t%s\n", strings.Join(g.Inputs, ", "))
			fmt.Fprintf(w, "OUTPUTS:\t%s\n", strings.Join(g.Outputs, ", "))
		}

		if c := result.Checkpoint; c != nil {
			fmt.Fprintf(w, "CLASS:\t%s\n", c.Class)
			fmt.Fprintf(w, "PROVIDER:\t%s\n", c.Provider)
			fmt.Fprintf(w, "DIR:\t%s\n", c.Dir)
		}

		if result.MaxLength > 0 {
			fmt.Fprintf(w, "MAX LENGTH:\t%d\n", result.MaxLength)
		}
	})
}

// newLoadResolver builds the resolver for the load flags.
func newLoadResolver(opts transfer.Options) (*models.Resolver, error) {
	registry := modelprovider.NewRegistry(opts)
	if loadConfig.Provider != "" {
		pinned, err := registry.Pin(loadConfig.Provider)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(registry.ListProviders(), ", "))
		}
		registry = pinned
	}

	return models.NewCheckpointResolver(registry, rootConfig.CacheDir, checkpoint.WithFiles(loadConfig.Files...)), nil
}

func summarize(target string, artifact any, m models.Model) loadResult {
	result := loadResult{
		Artifact: target,
		Kind:     format.Detect(artifact).String(),
		Task:     loadConfig.Task,
	}

	switch v := m.(type) {
	case *onnx.Model:
		result.Graph = &graphSummary{
			Path:         v.Path,
			Size:         v.Size,
			IRVersion:    v.Proto.IRVersion,
			Producer:     strings.TrimSpace(v.Proto.ProducerName + " " + v.Proto.ProducerVersion),
			OpsetVersion: v.OpsetVersion(),
			Inputs:       v.InputNames(),
			Outputs:      v.OutputNames(),
			Ops:          v.OpTypes(),
		}
		if v.Config != nil {
			result.MaxLength = models.MaxLength(v, nil)
			result.Config = v.Config.DiffDict()
		}
	case *checkpoint.Model:
		if loadConfig.Check {
			models.CheckLength(v, v.Tokenizer)
		}
		result.Checkpoint = v
		result.MaxLength = models.MaxLength(v, v.Tokenizer)
		result.Config = v.Config.DiffDict()
	case string:
		result.Unsupported = true
	}

	return result
}

func taskNames() string {
	names := make([]string, 0, len(models.Tasks()))
	for _, task := range models.Tasks() {
		names = append(names, string(task))
	}

	return strings.Join(names, ", ")
}
