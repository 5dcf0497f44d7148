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
	"path/filepath"
	"slices"
)

const (
	// OutputText renders results as aligned text.
	OutputText = "text"

	// OutputJSON renders results as JSON.
	OutputJSON = "json"

	// OutputYAML renders results as YAML.
	OutputYAML = "yaml"
)

var outputs = []string{OutputText, OutputJSON, OutputYAML}

type Root struct {
	CacheDir        string
	DisableProgress bool
	LogDir          string
	LogLevel        string
	Output          string
}

func NewRoot() (*Root, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = filepath.Join(home, ".cache")
	}

	return &Root{
		CacheDir:        filepath.Join(cacheDir, "modres"),
		DisableProgress: false,
		LogDir:          filepath.Join(home, ".modres", "logs"),
		LogLevel:        "info",
		Output:          OutputText,
	}, nil
}

func (r *Root) Validate() error {
	if r.CacheDir == "" {
		return fmt.Errorf("cache dir is required")
	}

	if r.LogDir == "" {
		return fmt.Errorf("log dir is required")
	}

	return validateOutput(r.Output)
}

func validateOutput(output string) error {
	if !slices.Contains(outputs, output) {
		return fmt.Errorf("invalid output format %q, must be one of %v", output, outputs)
	}

	return nil
}
