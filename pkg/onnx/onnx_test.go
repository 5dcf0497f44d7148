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

package onnx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// buildAddModel encodes Z = Add(X, Y) with one 16 byte initializer.
func buildAddModel() []byte {
	var node []byte
	node = appendString(node, 1, "X")
	node = appendString(node, 1, "Y")
	node = appendString(node, 2, "Z")
	node = appendString(node, 3, "add0")
	node = appendString(node, 4, "Add")

	var graph []byte
	graph = appendMessage(graph, graphNode, node)
	graph = appendString(graph, graphName, "add")
	graph = appendMessage(graph, graphInitializer, make([]byte, 16))
	graph = appendMessage(graph, graphInput, appendString(nil, 1, "X"))
	graph = appendMessage(graph, graphInput, appendString(nil, 1, "Y"))
	graph = appendMessage(graph, graphOutput, appendString(nil, 1, "Z"))

	var opset []byte
	opset = appendString(opset, 1, "")
	opset = appendVarint(opset, 2, 17)

	var entry []byte
	entry = appendString(entry, 1, "author")
	entry = appendString(entry, 2, "tests")

	var model []byte
	model = appendVarint(model, fieldIRVersion, 8)
	model = appendString(model, fieldProducerName, "pytorch")
	model = appendString(model, fieldProducerVersion, "2.1")
	model = appendVarint(model, fieldModelVersion, 3)
	model = appendMessage(model, fieldGraph, graph)
	model = appendMessage(model, fieldOpsetImport, opset)
	model = appendMessage(model, fieldMetadataProps, entry)
	return model
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestParse(t *testing.T) {
	m, err := Parse(buildAddModel())
	require.NoError(t, err)

	assert.Equal(t, int64(8), m.IRVersion)
	assert.Equal(t, "pytorch", m.ProducerName)
	assert.Equal(t, "2.1", m.ProducerVersion)
	assert.Equal(t, int64(3), m.ModelVersion)
	require.NotNil(t, m.Graph)
	assert.Equal(t, "add", m.Graph.Name)
	require.Len(t, m.Graph.Nodes, 1)
	assert.Equal(t, NodeProto{Name: "add0", OpType: "Add", Inputs: []string{"X", "Y"}, Outputs: []string{"Z"}}, m.Graph.Nodes[0])
	assert.Equal(t, 1, m.Graph.Initializers)
	assert.Equal(t, int64(16), m.Graph.InitializerBytes)
	assert.Equal(t, []OperatorSetID{{Domain: "", Version: 17}}, m.OpsetImport)
	assert.Equal(t, []StringStringEntry{{Key: "author", Value: "tests"}}, m.MetadataProps)
}

func TestParseErrors(t *testing.T) {
	model := buildAddModel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "text", data: []byte("{\"hello\": \"world\"}")},
		{name: "truncated", data: model[:len(model)-3]},
		{name: "missing ir version", data: appendString(nil, fieldProducerName, "x")},
		{name: "wrong wire type", data: appendString(nil, fieldIRVersion, "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseFile(t *testing.T) {
	data := buildAddModel()
	path := writeFile(t, t.TempDir(), "model.onnx", data)

	m, size, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.Equal(t, int64(8), m.IRVersion)

	_, _, err = ParseFile(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)
}

func TestIsSerialized(t *testing.T) {
	model := buildAddModel()

	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{name: "full model", header: model, want: true},
		{name: "header only", header: model[:HeaderSize], want: true},
		{name: "tag only", header: model[:1], want: true},
		{name: "empty", header: nil, want: false},
		{name: "json", header: []byte(`{"max_length": 20}`), want: false},
		{name: "zip", header: []byte("PK\x03\x04"), want: false},
		{name: "implausible ir version", header: appendVarint(nil, fieldIRVersion, 1000), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerialized(tt.header))
		})
	}
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()

	ok, err := SniffFile(writeFile(t, dir, "model.onnx", buildAddModel()))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SniffFile(writeFile(t, dir, "notes.txt", []byte("hello")))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = SniffFile(writeFile(t, dir, "empty", nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	data := buildAddModel()
	path := writeFile(t, dir, "model.onnx", data)
	writeFile(t, dir, ConfigFile, []byte(`{"max_position_embeddings": 512}`))

	t.Run("from path with config directory", func(t *testing.T) {
		m, err := Load(context.Background(), path, nil, dir)
		require.NoError(t, err)

		assert.Equal(t, path, m.Path)
		assert.Equal(t, int64(len(data)), m.Size)
		assert.Equal(t, []string{"X", "Y"}, m.InputNames())
		assert.Equal(t, []string{"Z"}, m.OutputNames())
		assert.Equal(t, int64(17), m.OpsetVersion())
		assert.Equal(t, []string{"Add"}, m.OpTypes())
		assert.Equal(t, "tests", m.Metadata()["author"])
		assert.Equal(t, "pytorch", m.Metadata()["producer_name"])
		require.NotNil(t, m.ModelConfig())
		assert.Equal(t, 512, *m.ModelConfig().MaxPositionEmbeddings)
	})

	t.Run("from bytes without config", func(t *testing.T) {
		m, err := Load(context.Background(), "", data, "")
		require.NoError(t, err)
		assert.Empty(t, m.Path)
		assert.Nil(t, m.ModelConfig())
	})

	t.Run("nil buffer is malformed", func(t *testing.T) {
		_, err := Load(context.Background(), "", nil, "")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("config file", func(t *testing.T) {
		m, err := Load(context.Background(), path, nil, filepath.Join(dir, ConfigFile))
		require.NoError(t, err)
		assert.NotNil(t, m.Config)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := Load(context.Background(), path, nil, filepath.Join(dir, "nope"))
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Load(ctx, path, nil, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoaderLoadSerialized(t *testing.T) {
	holder, err := NewLoader().LoadSerialized(context.Background(), "", buildAddModel(), "")
	require.NoError(t, err)

	m, ok := holder.(*Model)
	require.True(t, ok)
	assert.Equal(t, int64(8), m.Proto.IRVersion)

	holder, err = NewLoader().LoadSerialized(context.Background(), "", []byte("nope"), "")
	assert.Error(t, err)
	assert.Nil(t, holder)
}
