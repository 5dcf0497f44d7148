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
	"os"

	"github.com/uni-industries/txtai-fork/pkg/onnx"
)

// Kind is the storage format of a model artifact.
type Kind int

const (
	// SerializedGraph is a self-describing graph held in a file or buffer.
	SerializedGraph Kind = iota

	// PassThrough is an artifact that is already a model object.
	PassThrough

	// HubCheckpoint is a checkpoint identifier resolved through a model hub.
	HubCheckpoint
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case SerializedGraph:
		return "serialized-graph"
	case PassThrough:
		return "pass-through"
	case HubCheckpoint:
		return "hub-checkpoint"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Detect classifies an artifact. Byte buffers and strings naming an existing
// file are serialized graphs, any other string is a hub checkpoint and
// everything else passes through. The file extension is not consulted.
func Detect(artifact any) Kind {
	switch v := artifact.(type) {
	case []byte:
		return SerializedGraph
	case string:
		if IsFile(v) {
			return SerializedGraph
		}
		return HubCheckpoint
	default:
		return PassThrough
	}
}

// IsFile reports whether path names an existing regular file, following
// symlinks.
func IsFile(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Report describes an artifact on disk.
type Report struct {
	Path       string `json:"path" yaml:"path"`
	Kind       string `json:"kind" yaml:"kind"`
	Size       int64  `json:"size" yaml:"size"`
	Serialized bool   `json:"serialized" yaml:"serialized"`
	NameMatch  bool   `json:"name_match" yaml:"name_match"`
}

// Sniff classifies path and checks whether its content looks like a
// serialized graph. The content check is diagnostic only and does not change
// the kind.
func Sniff(path string) (Report, error) {
	r := Report{
		Path:      path,
		Kind:      Detect(path).String(),
		NameMatch: IsFileType(path, SerializedPatterns),
	}

	if !IsFile(path) {
		return r, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return r, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	r.Size = info.Size()

	if r.Serialized, err = onnx.SniffFile(path); err != nil {
		return r, err
	}

	return r, nil
}
