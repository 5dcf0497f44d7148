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
	"math"
	"math/big"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
)

// Unbounded is the model_max_length a tokenizer reports when its checkpoint
// never declared one. Tokenizer configs write it as int(1e30), which does not
// fit an int, so exactly that value decodes to it.
const Unbounded = math.MaxInt

// unboundedLiteral is how Unbounded is written back to tokenizer configs.
const unboundedLiteral = "1000000000000000019884624838656"

// Tokenizer is the subset of a tokenizer_config.json the resolver reasons
// about.
type Tokenizer struct {
	// Class is the tokenizer implementation, e.g. "BertTokenizer".
	Class string

	// ModelMaxLength is the longest input the tokenizer accepts. Nil when the
	// key is absent.
	ModelMaxLength *int
}

type tokenizerJSON struct {
	Class          string       `json:"tokenizer_class,omitempty"`
	ModelMaxLength *json.Number `json:"model_max_length,omitempty"`
}

// IsUnbounded reports whether the tokenizer still carries the unset sentinel.
func (t *Tokenizer) IsUnbounded() bool {
	return t != nil && t.ModelMaxLength != nil && *t.ModelMaxLength == Unbounded
}

// SetModelMaxLength sets the max length field.
func (t *Tokenizer) SetModelMaxLength(n int) {
	t.ModelMaxLength = &n
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tokenizer) UnmarshalJSON(data []byte) error {
	var raw tokenizerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Class = raw.Class
	t.ModelMaxLength = nil
	if raw.ModelMaxLength == nil {
		return nil
	}

	n, err := parseLength(raw.ModelMaxLength.String())
	if err != nil {
		return err
	}

	t.ModelMaxLength = &n
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Tokenizer) MarshalJSON() ([]byte, error) {
	raw := tokenizerJSON{Class: t.Class}
	if t.ModelMaxLength != nil {
		n := json.Number(strconv.Itoa(*t.ModelMaxLength))
		if *t.ModelMaxLength == Unbounded {
			n = json.Number(unboundedLiteral)
		}
		raw.ModelMaxLength = &n
	}

	return json.Marshal(raw)
}

// sentinel is int(1e30), the value tokenizer configs use for an unset length.
var sentinel, _ = new(big.Int).SetString(unboundedLiteral, 10)

// parseLength decodes an integral length. Only the sentinel maps to
// Unbounded; other lengths that do not fit an int are rejected.
func parseLength(s string) (int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("model_max_length must be a number, got %q", s)
		}

		if f != math.Trunc(f) {
			return 0, fmt.Errorf("model_max_length must be an integer, got %s", s)
		}

		n, _ = big.NewFloat(f).Int(nil)
	}

	if n.Sign() < 0 {
		return 0, fmt.Errorf("model_max_length must not be negative, got %s", s)
	}

	if n.Cmp(sentinel) == 0 {
		return Unbounded, nil
	}

	if !n.IsInt64() || n.Int64() >= math.MaxInt {
		return 0, fmt.Errorf("model_max_length %s overflows an int", s)
	}

	return int(n.Int64()), nil
}

// ParseTokenizer decodes a tokenizer_config.json document.
func ParseTokenizer(data []byte) (*Tokenizer, error) {
	t := &Tokenizer{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to decode tokenizer config: %w", err)
	}

	return t, nil
}

// ReadTokenizer reads and decodes a tokenizer_config.json file.
func ReadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer config: %w", err)
	}

	return ParseTokenizer(data)
}
