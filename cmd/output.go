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
	"os"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/uni-industries/txtai-fork/pkg/config"
)

// render prints v in the configured output format. Text output is produced by
// text through a tab aligned writer.
func render(v any, text func(w io.Writer)) error {
	return renderTo(os.Stdout, rootConfig.Output, v, text)
}

func renderTo(out io.Writer, format string, v any, text func(w io.Writer)) error {
	switch format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(v, "", "	")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, string(data))
		return err
	case config.OutputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	default:
		tw := tabwriter.NewWriter(out, 0, 0, 4, ' ', 0)
		text(tw)
		return tw.Flush()
	}
}
