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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onnxHeader is a ModelProto holding only ir_version 7.
var onnxHeader = []byte{0x08, 0x07}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

type model struct{}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "model.bin"), onnxHeader)

	tests := []struct {
		name     string
		artifact any
		want     Kind
	}{
		{name: "bytes", artifact: []byte("anything"), want: SerializedGraph},
		{name: "nil bytes", artifact: []byte(nil), want: SerializedGraph},
		{name: "existing file without onnx extension", artifact: file, want: SerializedGraph},
		{name: "directory", artifact: dir, want: HubCheckpoint},
		{name: "hub id", artifact: "sentence-transformers/all-MiniLM-L6-v2", want: HubCheckpoint},
		{name: "missing onnx path", artifact: filepath.Join(dir, "missing.onnx"), want: HubCheckpoint},
		{name: "empty string", artifact: "", want: HubCheckpoint},
		{name: "model object", artifact: &model{}, want: PassThrough},
		{name: "nil", artifact: nil, want: PassThrough},
		{name: "integer", artifact: 42, want: PassThrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.artifact))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "serialized-graph", SerializedGraph.String())
	assert.Equal(t, "pass-through", PassThrough.String())
	assert.Equal(t, "hub-checkpoint", HubCheckpoint.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	graph := writeFile(t, filepath.Join(dir, "model.onnx"), onnxHeader)
	text := writeFile(t, filepath.Join(dir, "README.md"), []byte("# model"))

	r, err := Sniff(graph)
	require.NoError(t, err)
	assert.Equal(t, Report{Path: graph, Kind: "serialized-graph", Size: 2, Serialized: true, NameMatch: true}, r)

	r, err = Sniff(text)
	require.NoError(t, err)
	assert.False(t, r.Serialized)
	assert.False(t, r.NameMatch)
	assert.Equal(t, "serialized-graph", r.Kind)

	r, err = Sniff("org/model")
	require.NoError(t, err)
	assert.Equal(t, "hub-checkpoint", r.Kind)
	assert.Zero(t, r.Size)
}

func TestIsFileType(t *testing.T) {
	tests := []struct {
		filename string
		patterns []string
		want     bool
	}{
		{filename: "model.onnx", patterns: SerializedPatterns, want: true},
		{filename: "dir/sub/MODEL.ONNX", patterns: SerializedPatterns, want: true},
		{filename: "model.ort", patterns: SerializedPatterns, want: true},
		{filename: "model.safetensors", patterns: SerializedPatterns, want: false},
		{filename: "pytorch_model.bin", patterns: CheckpointPatterns, want: true},
		{filename: "tokenizer_config.json", patterns: MetadataPatterns, want: true},
		{filename: "vocab.txt", patterns: MetadataPatterns, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFileType(tt.filename, tt.patterns))
		})
	}
}

func TestIsSkippable(t *testing.T) {
	assert.True(t, IsSkippable(".git"))
	assert.True(t, IsSkippable("__pycache__"))
	assert.True(t, IsSkippable("x.pyc"))
	assert.False(t, IsSkippable("."))
	assert.False(t, IsSkippable("model.onnx"))
}

func TestPathFilter(t *testing.T) {
	_, err := NewPathFilter("[")
	assert.Error(t, err)

	pf, err := NewPathFilter("legacy/**", "*.ort")
	require.NoError(t, err)
	assert.True(t, pf.Match("legacy/a/model.onnx"))
	assert.True(t, pf.Match("model.ort"))
	assert.False(t, pf.Match("current/model.onnx"))

	var none *PathFilter
	assert.False(t, none.Match("anything"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.onnx"), onnxHeader)
	writeFile(t, filepath.Join(dir, "quantized", "model_int8.onnx"), onnxHeader)
	writeFile(t, filepath.Join(dir, "legacy", "old.onnx"), onnxHeader)
	writeFile(t, filepath.Join(dir, ".cache", "hidden.onnx"), onnxHeader)
	writeFile(t, filepath.Join(dir, "broken.onnx"), []byte("not a model"))
	writeFile(t, filepath.Join(dir, "config.json"), []byte("{}"))

	filter, err := NewPathFilter("legacy/**")
	require.NoError(t, err)

	entries, err := Scan(dir, "", filter)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "broken.onnx", Size: 11, Serialized: false},
		{Path: "model.onnx", Size: 2, Serialized: true},
		{Path: "quantized/model_int8.onnx", Size: 2, Serialized: true},
	}, entries)

	entries, err = Scan(dir, "*.json", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.json", entries[0].Path)

	_, err = Scan(dir, "[", nil)
	assert.Error(t, err)
}
