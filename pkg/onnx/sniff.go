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
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
	"google.golang.org/protobuf/encoding/protowire"
)

// HeaderSize is how many leading bytes SniffFile inspects.
const HeaderSize = 64

// modelWireTypes maps the ModelProto fields to their wire types.
var modelWireTypes = map[protowire.Number]protowire.Type{
	fieldIRVersion:       protowire.VarintType,
	fieldProducerName:    protowire.BytesType,
	fieldProducerVersion: protowire.BytesType,
	fieldDomain:          protowire.BytesType,
	fieldModelVersion:    protowire.VarintType,
	fieldDocString:       protowire.BytesType,
	fieldGraph:           protowire.BytesType,
	fieldOpsetImport:     protowire.BytesType,
	fieldMetadataProps:   protowire.BytesType,
	fieldTrainingInfo:    protowire.BytesType,
	fieldFunctions:       protowire.BytesType,
}

// maxIRVersion is a generous upper bound on the IR versions seen in the wild.
const maxIRVersion = 64

// IsSerialized reports whether header looks like the start of a ModelProto.
// header may be truncated anywhere after the first tag.
func IsSerialized(header []byte) bool {
	seen := false
	for len(header) > 0 {
		num, typ, n := protowire.ConsumeTag(header)
		if n < 0 {
			return seen
		}

		want, ok := modelWireTypes[num]
		if !ok || want != typ {
			return false
		}
		header = header[n:]

		if num == fieldIRVersion {
			v, m := protowire.ConsumeVarint(header)
			if m < 0 {
				return true
			}
			if v == 0 || v > maxIRVersion {
				return false
			}
			header = header[m:]
			seen = true
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, header)
		if m < 0 {
			return true
		}
		header = header[m:]
		seen = true
	}

	return seen
}

// SniffFile reports whether the file at path starts like a ModelProto.
func SniffFile(path string) (bool, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to map %s: %w", path, err)
	}
	defer r.Close()

	n := min(r.Len(), HeaderSize)
	header := make([]byte, n)
	if _, err := r.ReadAt(header, 0); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	return IsSerialized(header), nil
}
