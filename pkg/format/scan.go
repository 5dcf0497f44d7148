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

package format

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// DefaultScanPattern matches serialized graphs at any depth.
const DefaultScanPattern = "**/*.{onnx,ort}"

// PathFilter excludes paths matching any of its patterns.
type PathFilter struct {
	patterns []string
}

// NewPathFilter validates the exclude patterns.
func NewPathFilter(patterns ...string) (*PathFilter, error) {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", p)
		}
		cleaned = append(cleaned, strings.TrimRight(p, "/"))
	}

	return &PathFilter{patterns: cleaned}, nil
}

// Match reports whether the slash separated path is excluded.
func (pf *PathFilter) Match(path string) bool {
	if pf == nil {
		return false
	}

	for _, pattern := range pf.patterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}

// Entry is one file found by Scan.
type Entry struct {
	Path       string `json:"path" yaml:"path"`
	Size       int64  `json:"size" yaml:"size"`
	Serialized bool   `json:"serialized" yaml:"serialized"`
	Large      bool   `json:"large" yaml:"large"`
}

// Scan lists the files under root matching pattern, skipping hidden entries
// and anything the filter excludes. Paths are relative to root and sorted.
func Scan(root, pattern string, filter *PathFilter) ([]Entry, error) {
	if pattern == "" {
		pattern = DefaultScanPattern
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid scan pattern: %q", pattern)
	}

	fsys := os.DirFS(root)
	var entries []Entry
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
		if d.IsDir() || hasSkippableSegment(path) || filter.Match(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		full := filepath.Join(root, filepath.FromSlash(path))
		entries = append(entries, Entry{
			Path:       path,
			Size:       info.Size(),
			Serialized: sniffQuiet(full),
			Large:      info.Size() > LargeFileThreshold,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	return entries, nil
}

func hasSkippableSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if IsSkippable(seg) {
			return true
		}
	}

	return false
}

// sniffQuiet logs sniff failures and reports the file as not serialized.
func sniffQuiet(path string) bool {
	r, err := Sniff(path)
	if err != nil {
		logrus.Warnf("format: failed to sniff %s: %v", path, err)
		return false
	}

	return r.Serialized
}
