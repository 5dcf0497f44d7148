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

import "github.com/sirupsen/logrus"

// Holder is anything carrying a model config. A config is its own holder; a
// loaded model returns the config it was built from.
type Holder interface {
	ModelConfig() *Config
}

// unwrap resolves one level of config nesting. A nil holder or config yields
// nil, which callers treat as a config with every optional field absent.
func unwrap(h Holder) *Config {
	if h == nil {
		return nil
	}

	return h.ModelConfig()
}

// CheckLength copies max_position_embeddings onto a tokenizer whose
// model_max_length was never set. Running it again is a no-op.
func CheckLength(config Holder, tokenizer *Tokenizer) {
	cfg := unwrap(config)
	if cfg == nil || cfg.MaxPositionEmbeddings == nil || !tokenizer.IsUnbounded() {
		return
	}

	logrus.Debugf("metadata: setting tokenizer model_max_length to %d", *cfg.MaxPositionEmbeddings)
	tokenizer.SetModelMaxLength(*cfg.MaxPositionEmbeddings)
}

// MaxLength returns the generation length for a model. An explicitly set
// config max_length wins, as does the config default when the tokenizer has no
// length; otherwise the tokenizer length is used.
func MaxLength(config Holder, tokenizer *Tokenizer) int {
	cfg := unwrap(config)

	if _, explicit := cfg.DiffDict()["max_length"]; explicit || tokenizer == nil || tokenizer.ModelMaxLength == nil {
		return cfg.MaxLengthOrDefault()
	}

	return *tokenizer.ModelMaxLength
}
