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

package metadata

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	json "github.com/goccy/go-json"
)

// DefaultMaxLength is the generation length a config reports when max_length
// was never set.
const DefaultMaxLength = 20

// defaults holds the values every checkpoint config inherits when a key is
// absent. Keys matching these values are not part of the diff.
var defaults = map[string]any{
	"max_length":           float64(DefaultMaxLength),
	"min_length":           float64(0),
	"do_sample":            false,
	"early_stopping":       false,
	"num_beams":            float64(1),
	"num_beam_groups":      float64(1),
	"temperature":          float64(1),
	"top_k":                float64(50),
	"top_p":                float64(1),
	"repetition_penalty":   float64(1),
	"length_penalty":       float64(1),
	"no_repeat_ngram_size": float64(0),
	"num_return_sequences": float64(1),
	"output_hidden_states": false,
	"output_attentions":    false,
	"return_dict":          true,
	"is_encoder_decoder":   false,
	"is_decoder":           false,
	"torchscript":          false,
}

// Config is the subset of a checkpoint config.json the resolver reasons about.
// Optional fields are nil when the key is absent.
type Config struct {
	// ModelType is the model family, e.g. "bert".
	ModelType string

	// Architectures lists the model classes the checkpoint was saved from.
	Architectures []string

	// MaxPositionEmbeddings is the longest sequence the position table covers.
	MaxPositionEmbeddings *int

	// MaxLength is the generation length configured for the checkpoint.
	MaxLength *int

	// raw keeps every key of the source document for DiffDict.
	raw map[string]any
}

// ModelConfig returns c itself, so a bare config can be passed where a loaded
// model is accepted.
func (c *Config) ModelConfig() *Config {
	return c
}

// MaxLengthOrDefault returns max_length, or DefaultMaxLength when unset.
func (c *Config) MaxLengthOrDefault() int {
	if c == nil || c.MaxLength == nil {
		return DefaultMaxLength
	}

	return *c.MaxLength
}

// DiffDict returns the keys whose values differ from the config defaults.
func (c *Config) DiffDict() map[string]any {
	diff := make(map[string]any)
	if c == nil {
		return diff
	}

	for k, v := range c.raw {
		if d, ok := defaults[k]; ok && reflect.DeepEqual(d, v) {
			continue
		}

		diff[k] = v
	}

	return diff
}

// Keys returns the sorted keys of the source document.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}

	keys := make([]string, 0, len(c.raw))
	for k := range c.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// ParseConfig decodes a config.json document.
func ParseConfig(data []byte) (*Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg := &Config{raw: raw}
	if v, ok := raw["model_type"].(string); ok {
		cfg.ModelType = v
	}

	if archs, ok := raw["architectures"].([]any); ok {
		for _, a := range archs {
			if s, ok := a.(string); ok {
				cfg.Architectures = append(cfg.Architectures, s)
			}
		}
	}

	var err error
	if cfg.MaxPositionEmbeddings, err = intField(raw, "max_position_embeddings"); err != nil {
		return nil, err
	}

	if cfg.MaxLength, err = intField(raw, "max_length"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfig reads and decodes a config.json file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return ParseConfig(data)
}

// NewConfig builds a config from explicit values, as if decoded from a
// document containing exactly the given keys.
func NewConfig(values map[string]any) (*Config, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	return ParseConfig(data)
}

func intField(raw map[string]any, key string) (*int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}

	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return nil, fmt.Errorf("config field %s must be an integer, got %v", key, v)
	}

	n := int(f)
	return &n, nil
}
