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
	"strings"
)

const (
	// defaultLoadConcurrency is the default number of metadata files fetched in parallel.
	defaultLoadConcurrency = 4

	// defaultTask loads checkpoints without a task head.
	defaultTask = "default"
)

type Load struct {
	Task        string
	Config      string
	Provider    string
	Files       []string
	Concurrency int
	Check       bool
}

func NewLoad() *Load {
	return &Load{
		Task:        defaultTask,
		Config:      "",
		Provider:    "",
		Files:       []string{},
		Concurrency: defaultLoadConcurrency,
		Check:       true,
	}
}

func (l *Load) Validate() error {
	if l.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency: %d", l.Concurrency)
	}

	for _, name := range l.Files {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("invalid file name: %q", name)
		}
	}

	if l.Config != "" {
		if _, err := os.Stat(l.Config); err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
	}

	return nil
}
