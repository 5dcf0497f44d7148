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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/pkg/metadata"
)

// ConfigFile is the config read when the config path names a directory.
const ConfigFile = "config.json"

// Model is a serialized graph loaded for inspection. It never executes the
// graph.
type Model struct {
	// Path is the source file, empty for models loaded from memory.
	Path string

	// Size is the encoded size in bytes.
	Size int64

	Proto *ModelProto

	// Config is the companion model config, nil when none was given.
	Config *metadata.Config
}

// ModelConfig implements metadata.Holder.
func (m *Model) ModelConfig() *metadata.Config {
	if m == nil {
		return nil
	}

	return m.Config
}

// InputNames returns the graph input names.
func (m *Model) InputNames() []string {
	if m.Proto.Graph == nil {
		return nil
	}

	names := make([]string, 0, len(m.Proto.Graph.Inputs))
	for _, in := range m.Proto.Graph.Inputs {
		names = append(names, in.Name)
	}

	return names
}

// OutputNames returns the graph output names.
func (m *Model) OutputNames() []string {
	if m.Proto.Graph == nil {
		return nil
	}

	names := make([]string, 0, len(m.Proto.Graph.Outputs))
	for _, out := range m.Proto.Graph.Outputs {
		names = append(names, out.Name)
	}

	return names
}

// OpsetVersion returns the version of the default operator set, or 0 when it
// is not imported.
func (m *Model) OpsetVersion() int64 {
	for _, opset := range m.Proto.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			return opset.Version
		}
	}

	return 0
}

// Metadata returns the metadata props with the producer fields.
func (m *Model) Metadata() map[string]string {
	meta := make(map[string]string, len(m.Proto.MetadataProps)+3)
	for _, prop := range m.Proto.MetadataProps {
		meta[prop.Key] = prop.Value
	}

	meta["producer_name"] = m.Proto.ProducerName
	meta["producer_version"] = m.Proto.ProducerVersion
	meta["domain"] = m.Proto.Domain
	return meta
}

// OpTypes returns the distinct operator types used by the graph, sorted.
func (m *Model) OpTypes() []string {
	if m.Proto.Graph == nil {
		return nil
	}

	set := make(map[string]struct{})
	for _, node := range m.Proto.Graph.Nodes {
		set[node.OpType] = struct{}{}
	}

	ops := make([]string, 0, len(set))
	for op := range set {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	return ops
}

// Load reads a serialized graph from path, or from data when path is empty, and
// attaches the config found at configPath. configPath may name a config file
// or a directory holding one; empty means no config.
func Load(ctx context.Context, path string, data []byte, configPath string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := &Model{}
	if path == "" {
		proto, err := Parse(data)
		if err != nil {
			return nil, err
		}
		model.Proto, model.Size = proto, int64(len(data))
	} else {
		proto, size, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		model.Path, model.Proto, model.Size = path, proto, size
	}

	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}
	model.Config = cfg

	logrus.Debugf("onnx: loaded model %q, ir version %d, opset %d", model.Path, model.Proto.IRVersion, model.OpsetVersion())
	return model, nil
}

func readConfig(path string) (*metadata.Config, error) {
	if path == "" {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if info.IsDir() {
		path = filepath.Join(path, ConfigFile)
	}

	return metadata.ReadConfig(path)
}

// Loader loads serialized graphs for the model resolver.
type Loader struct{}

// NewLoader creates a new loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSerialized loads the graph at path, or held in data.
func (l *Loader) LoadSerialized(ctx context.Context, path string, data []byte, configPath string) (metadata.Holder, error) {
	m, err := Load(ctx, path, data, configPath)
	if err != nil {
		return nil, err
	}

	return m, nil
}
