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

// ModelProto is the envelope of a serialized ONNX model. Tensor payloads are
// never materialized; only their count and size are recorded.
type ModelProto struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	DocString       string
	Graph           *GraphProto
	OpsetImport     []OperatorSetID
	MetadataProps   []StringStringEntry
}

// GraphProto is the computation graph of a model.
type GraphProto struct {
	Name      string
	DocString string
	Nodes     []NodeProto
	Inputs    []ValueInfoProto
	Outputs   []ValueInfoProto

	// Initializers is the number of weight tensors stored in the graph.
	Initializers int

	// InitializerBytes is the encoded size of those tensors.
	InitializerBytes int64
}

// NodeProto is one operator invocation.
type NodeProto struct {
	Name    string
	OpType  string
	Domain  string
	Inputs  []string
	Outputs []string
}

// ValueInfoProto names a graph input or output.
type ValueInfoProto struct {
	Name      string
	DocString string
}

// OperatorSetID identifies an imported operator set.
type OperatorSetID struct {
	Domain  string
	Version int64
}

// StringStringEntry is a metadata key/value pair.
type StringStringEntry struct {
	Key   string
	Value string
}

// ModelProto field numbers.
const (
	fieldIRVersion       = 1
	fieldProducerName    = 2
	fieldProducerVersion = 3
	fieldDomain          = 4
	fieldModelVersion    = 5
	fieldDocString       = 6
	fieldGraph           = 7
	fieldOpsetImport     = 8
	fieldMetadataProps   = 14
	fieldTrainingInfo    = 20
	fieldFunctions       = 25
)

// GraphProto field numbers.
const (
	graphNode        = 1
	graphName        = 2
	graphInitializer = 5
	graphDocString   = 10
	graphInput       = 11
	graphOutput      = 12
)
