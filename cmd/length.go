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

	"github.com/uni-industries/txtai-fork/pkg/config"
	"github.com/uni-industries/txtai-fork/pkg/metadata"
	"github.com/uni-industries/txtai-fork/pkg/models"
)

var lengthConfig = config.NewLength()

// lengthCmd represents the modres command for length.
var lengthCmd = &cobra.Command{
	Use:                "length [flags] <config.json>",
	Short:              "Length reconciles the max sequence length of a model config and its tokenizer config.",
	Args:               cobra.ExactArgs(1),
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lengthConfig.Validate(); err != nil {
			return err
		}

		return runLength(args[0])
	},
}

// init initializes length command.
func init() {
	flags := lengthCmd.Flags()
	flags.StringVar(&lengthConfig.Tokenizer, "tokenizer", lengthConfig.Tokenizer, "specify the tokenizer_config.json of the model")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind length flags to viper: %w", err))
	}
}

type lengthResult struct {
	MaxPositionEmbeddings *int `json:"max_position_embeddings,omitempty" yaml:"max_position_embeddings,omitempty"`
	ConfigMaxLength       int  `json:"config_max_length" yaml:"config_max_length"`
	TokenizerBefore       *int `json:"tokenizer_before,omitempty" yaml:"tokenizer_before,omitempty"`
	TokenizerAfter        *int `json:"tokenizer_after,omitempty" yaml:"tokenizer_after,omitempty"`
	MaxLength             int  `json:"max_length" yaml:"max_length"`
}

// runLength runs the length modres.
func runLength(path string) error {
	cfg, err := metadata.ReadConfig(path)
	if err != nil {
		return err
	}

	var tokenizer *metadata.Tokenizer
	if lengthConfig.Tokenizer != "" {
		if tokenizer, err = metadata.ReadTokenizer(lengthConfig.Tokenizer); err != nil {
			return err
		}
	}

	result := lengthResult{
		MaxPositionEmbeddings: cfg.MaxPositionEmbeddings,
		ConfigMaxLength:       cfg.MaxLengthOrDefault(),
	}

	if tokenizer != nil && tokenizer.ModelMaxLength != nil {
		before := *tokenizer.ModelMaxLength
		result.TokenizerBefore = &before
	}

	models.CheckLength(cfg, tokenizer)
	result.MaxLength = models.MaxLength(cfg, tokenizer)

	if tokenizer != nil {
		result.TokenizerAfter = tokenizer.ModelMaxLength
	}

	return render(result, func(w io.Writer) {
		fmt.Fprintf(w, "MAX POSITION EMBEDDINGS:\t%s\n", optional(result.MaxPositionEmbeddings))
		fmt.Fprintf(w, "CONFIG MAX LENGTH:\t%d\n", result.ConfigMaxLength)
		fmt.Fprintf(w, "TOKENIZER MAX LENGTH:\t%s -> %s\n", optional(result.TokenizerBefore), optional(result.TokenizerAfter))
		fmt.Fprintf(w, "MAX LENGTH:\t%d\n", result.MaxLength)
	})
}

func optional(v *int) string {
	switch {
	case v == nil:
		return "-"
	case *v == metadata.Unbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("%d", *v)
	}
}
