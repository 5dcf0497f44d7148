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

package checkpoint

import (
	"github.com/uni-industries/txtai-fork/pkg/metadata"
)

const (
	// ConfigFile holds the model configuration and must exist.
	ConfigFile = "config.json"

	// TokenizerConfigFile holds the tokenizer settings and is optional.
	TokenizerConfigFile = "tokenizer_config.json"
)

// Model is a checkpoint resolved from a hub. It carries the metadata of the
// checkpoint, not its weights.
type Model struct {
	// ID is the identifier the checkpoint was requested with.
	ID string `json:"id" yaml:"id"`

	// Class is the model head requested for the task.
	Class Class `json:"class" yaml:"class"`

	// Provider is the name of the provider that served the files.
	Provider string `json:"provider" yaml:"provider"`

	// Dir is the local directory holding the fetched files.
	Dir string `json:"dir" yaml:"dir"`

	Config    *metadata.Config    `json:"-" yaml:"-"`
	Tokenizer *metadata.Tokenizer `json:"-" yaml:"-"`
}

// ModelConfig returns the checkpoint configuration.
func (m *Model) ModelConfig() *metadata.Config {
	if m == nil {
		return nil
	}

	return m.Config
}
