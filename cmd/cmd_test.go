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

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-industries/txtai-fork/pkg/checkpoint"
	"github.com/uni-industries/txtai-fork/pkg/config"
	"github.com/uni-industries/txtai-fork/pkg/device"
	"github.com/uni-industries/txtai-fork/pkg/metadata"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
	"github.com/uni-industries/txtai-fork/pkg/models"
)

func TestRenderTo(t *testing.T) {
	v := struct {
		Name string `json:"name" yaml:"name"`
		Size int    `json:"size" yaml:"size"`
	}{Name: "model.onnx", Size: 2}

	text := func(w io.Writer) {
		fmt.Fprintf(w, "NAME\tSIZE\n%s\t%d\n", v.Name, v.Size)
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: config.OutputJSON, want: "{\n\t\"name\": \"model.onnx\",\n\t\"size\": 2\n}\n"},
		{format: config.OutputYAML, want: "name: model.onnx\nsize: 2\n"},
		{format: config.OutputText, want: "NAME          SIZE\nmodel.onnx    2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderTo(&buf, tt.format, v, text))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestDeviceRequest(t *testing.T) {
	tests := []struct {
		value string
		want  device.Request
	}{
		{value: "", want: device.Auto()},
		{value: "true", want: device.Flag(true)},
		{value: "1", want: device.Name("1")},
		{value: "cuda:1", want: device.FromHandle(device.Handle{Type: device.TypeCUDA, Index: 1})},
		{value: "cpu", want: device.FromHandle(device.Handle{Type: device.TypeCPU, Index: device.CPU})},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, deviceRequest(tt.value))
		})
	}
}

func TestSummarize(t *testing.T) {
	cfg, err := metadata.NewConfig(map[string]any{"max_position_embeddings": 512})
	require.NoError(t, err)

	tokenizer, err := metadata.ParseTokenizer([]byte(`{"model_max_length": 1e30}`))
	require.NoError(t, err)

	m := &checkpoint.Model{ID: "org/bert", Class: checkpoint.AutoModel, Config: cfg, Tokenizer: tokenizer}

	result := summarize("org/bert", "org/bert", m)
	assert.Equal(t, "hub-checkpoint", result.Kind)
	assert.Same(t, m, result.Checkpoint)
	assert.Equal(t, 512, result.MaxLength)
	assert.Equal(t, 512, *tokenizer.ModelMaxLength)

	result = summarize("org/bert", "org/bert", "org/bert")
	assert.True(t, result.Unsupported)
	assert.Nil(t, result.Checkpoint)
}

func TestOptional(t *testing.T) {
	n, unbounded := 512, metadata.Unbounded

	assert.Equal(t, "-", optional(nil))
	assert.Equal(t, "512", optional(&n))
	assert.Equal(t, "unbounded", optional(&unbounded))
}

func TestProviderStatuses(t *testing.T) {
	registry := modelprovider.NewRegistry(transfer.Options{})

	statuses, err := providerStatuses(registry, nil)
	require.NoError(t, err)
	require.Len(t, statuses, len(registry.ListProviders()))
	assert.Equal(t, providerStatus{Name: "local", Auth: true}, statuses[0])

	statuses, err = providerStatuses(registry, []string{"local"})
	require.NoError(t, err)
	assert.Equal(t, []providerStatus{{Name: "local", Auth: true}}, statuses)

	_, err = providerStatuses(registry, []string{"civitai"})
	assert.Error(t, err)
}

func TestNewLoadResolver(t *testing.T) {
	saved, savedDir := *loadConfig, rootConfig.CacheDir
	t.Cleanup(func() {
		*loadConfig, rootConfig.CacheDir = saved, savedDir
	})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, checkpoint.ConfigFile), []byte(`{"max_position_embeddings": 512}`), 0644))
	rootConfig.CacheDir = t.TempDir()

	loadConfig.Provider = "local"
	loadConfig.Files = []string{"vocab.txt"}
	r, err := newLoadResolver(transfer.Options{})
	require.NoError(t, err)

	m, err := r.Load(context.Background(), dir, "", models.TaskDefault)
	require.NoError(t, err)
	cp, ok := m.(*checkpoint.Model)
	require.True(t, ok)
	assert.Equal(t, "local", cp.Provider)
	assert.Equal(t, dir, cp.Dir)

	loadConfig.Provider = "civitai"
	_, err = newLoadResolver(transfer.Options{})
	assert.ErrorContains(t, err, "huggingface")
}
