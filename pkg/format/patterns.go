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
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
)

var (
	// SerializedPatterns match serialized graph files.
	SerializedPatterns = []string{
		"*.onnx", // ONNX model
		"*.ort",  // ONNX Runtime optimized model
	}

	// CheckpointPatterns match checkpoint weight files.
	CheckpointPatterns = []string{
		"*.safetensors",
		"*.bin",
		"*.pt",
		"*.pth",
		"*.h5",
		"*.msgpack",
		"*.gguf",
	}

	// MetadataPatterns match the checkpoint metadata files the resolver reads.
	MetadataPatterns = []string{
		"config.json",
		"generation_config.json",
		"tokenizer_config.json",
		"special_tokens_map.json",
	}

	skipPatterns = []string{
		".*",
		"__pycache__",
		"*.pyc",
	}
)

// LargeFileThreshold is the size above which a file is reported as a weight
// payload.
const LargeFileThreshold int64 = 128 * humanize.MByte

// IsFileType reports whether the base name of filename matches any of the
// patterns, ignoring case.
func IsFileType(filename string, patterns []string) bool {
	base := strings.ToLower(path.Base(toSlash(filename)))
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(strings.ToLower(pattern), base); err == nil && matched {
			return true
		}
	}

	return false
}

// IsSkippable reports whether a directory entry is ignored when scanning.
func IsSkippable(name string) bool {
	if name == "." || name == ".." {
		return false
	}

	return IsFileType(name, skipPatterns)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
