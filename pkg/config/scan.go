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

	"github.com/bmatcuk/doublestar/v4"
)

type Scan struct {
	Pattern string
	Exclude []string
}

func NewScan() *Scan {
	return &Scan{
		Pattern: "",
		Exclude: []string{},
	}
}

func (s *Scan) Validate() error {
	if s.Pattern != "" && !doublestar.ValidatePattern(s.Pattern) {
		return fmt.Errorf("invalid pattern: %q", s.Pattern)
	}

	for _, p := range s.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}

	return nil
}
