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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrapped nests a config one level, like a loaded model does.
type wrapped struct {
	cfg *Config
}

func (w wrapped) ModelConfig() *Config {
	return w.cfg
}

func mustConfig(t *testing.T, doc string) *Config {
	t.Helper()

	cfg, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func tokenizerWith(n int) *Tokenizer {
	return &Tokenizer{ModelMaxLength: &n}
}

func TestCheckLength(t *testing.T) {
	tests := []struct {
		name      string
		config    Holder
		tokenizer *Tokenizer
		want      *int
	}{
		{
			name:      "unbounded tokenizer takes position embeddings",
			config:    mustConfig(t, `{"max_position_embeddings": 512}`),
			tokenizer: mustTokenizer(t, `{"model_max_length": 1e30}`),
			want:      intPtr(512),
		},
		{
			name:      "nested config is unwrapped",
			config:    wrapped{cfg: mustConfig(t, `{"max_position_embeddings": 1024}`)},
			tokenizer: tokenizerWith(Unbounded),
			want:      intPtr(1024),
		},
		{
			name:      "large length below the sentinel is left alone",
			config:    mustConfig(t, `{"max_position_embeddings": 512}`),
			tokenizer: mustTokenizer(t, `{"model_max_length": 1e18}`),
			want:      intPtr(1000000000000000000),
		},
		{
			name:      "bounded tokenizer is left alone",
			config:    mustConfig(t, `{"max_position_embeddings": 512}`),
			tokenizer: tokenizerWith(256),
			want:      intPtr(256),
		},
		{
			name:      "config without position embeddings",
			config:    mustConfig(t, `{"model_type": "bert"}`),
			tokenizer: tokenizerWith(Unbounded),
			want:      intPtr(Unbounded),
		},
		{
			name:      "tokenizer without length",
			config:    mustConfig(t, `{"max_position_embeddings": 512}`),
			tokenizer: &Tokenizer{},
			want:      nil,
		},
		{
			name:      "nil config",
			config:    nil,
			tokenizer: tokenizerWith(Unbounded),
			want:      intPtr(Unbounded),
		},
		{
			name:      "nested nil config",
			config:    wrapped{},
			tokenizer: tokenizerWith(Unbounded),
			want:      intPtr(Unbounded),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			CheckLength(tt.config, tt.tokenizer)
			assert.Equal(t, tt.want, tt.tokenizer.ModelMaxLength)
		})
	}
}

func TestCheckLengthIdempotent(t *testing.T) {
	cfg := mustConfig(t, `{"max_position_embeddings": 512}`)
	tok := tokenizerWith(Unbounded)

	CheckLength(cfg, tok)
	once := *tok.ModelMaxLength

	CheckLength(cfg, tok)
	assert.Equal(t, once, *tok.ModelMaxLength)
	assert.Equal(t, 512, *tok.ModelMaxLength)
}

func TestCheckLengthNilTokenizer(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckLength(mustConfig(t, `{"max_position_embeddings": 512}`), nil)
	})
}

func TestMaxLength(t *testing.T) {
	tests := []struct {
		name      string
		config    Holder
		tokenizer *Tokenizer
		want      int
	}{
		{name: "explicit config wins", config: mustConfig(t, `{"max_length": 128}`), tokenizer: tokenizerWith(512), want: 128},
		{name: "explicit config wins when nested", config: wrapped{cfg: mustConfig(t, `{"max_length": 64}`)}, tokenizer: tokenizerWith(512), want: 64},
		{name: "default config uses tokenizer", config: mustConfig(t, `{"model_type": "t5"}`), tokenizer: tokenizerWith(512), want: 512},
		{name: "max length equal to default is not explicit", config: mustConfig(t, `{"max_length": 20}`), tokenizer: tokenizerWith(512), want: 512},
		{name: "tokenizer without length uses config default", config: mustConfig(t, `{}`), tokenizer: &Tokenizer{}, want: DefaultMaxLength},
		{name: "nil tokenizer uses config", config: mustConfig(t, `{"max_length": 200}`), tokenizer: nil, want: 200},
		{name: "nil config uses tokenizer", config: nil, tokenizer: tokenizerWith(384), want: 384},
		{name: "nil config and tokenizer", config: nil, tokenizer: nil, want: DefaultMaxLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxLength(tt.config, tt.tokenizer))
		})
	}
}

func TestMaxLengthDoesNotMutate(t *testing.T) {
	tok := tokenizerWith(Unbounded)
	cfg := mustConfig(t, `{"max_position_embeddings": 512}`)

	assert.Equal(t, Unbounded, MaxLength(cfg, tok))
	assert.Equal(t, Unbounded, *tok.ModelMaxLength)
}

func intPtr(n int) *int {
	return &n
}
