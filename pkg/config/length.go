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

package config

import (
	"fmt"
	"os"
)

type Length struct {
	// Tokenizer is the optional tokenizer_config.json path.
	Tokenizer string
}

func NewLength() *Length {
	return &Length{
		Tokenizer: "",
	}
}

func (l *Length) Validate() error {
	if l.Tokenizer == "" {
		return nil
	}

	info, err := os.Stat(l.Tokenizer)
	if err != nil {
		return fmt.Errorf("invalid tokenizer path: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("tokenizer path %s is a directory", l.Tokenizer)
	}

	return nil
}
