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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned for input that is not a well formed ModelProto.
var ErrMalformed = errors.New("malformed onnx model")

// maxInline bounds the size of a non-tensor field copied into memory.
const maxInline = 64 << 20

// field is one decoded protobuf field. Length-delimited and fixed-size values
// are described by their offset and size and read lazily.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	off    int64
	size   int64
}

// readField decodes the field starting at off and returns the offset of the
// next field.
func readField(r io.ReaderAt, off, end int64) (field, int64, error) {
	var head [2 * binary.MaxVarintLen64]byte

	n := int64(len(head))
	if end-off < n {
		n = end - off
	}

	buf := head[:n]
	if _, err := r.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
		return field{}, 0, fmt.Errorf("failed to read field at offset %d: %w", off, err)
	}

	num, typ, tagLen := protowire.ConsumeTag(buf)
	if tagLen < 0 {
		return field{}, 0, fmt.Errorf("%w: bad tag at offset %d: %v", ErrMalformed, off, protowire.ParseError(tagLen))
	}

	f := field{num: num, typ: typ}
	rest := buf[tagLen:]
	pos := off + int64(tagLen)

	switch typ {
	case protowire.VarintType:
		v, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return field{}, 0, fmt.Errorf("%w: bad varint at offset %d: %v", ErrMalformed, pos, protowire.ParseError(m))
		}
		f.varint = v
		return f, pos + int64(m), nil
	case protowire.Fixed32Type:
		f.off, f.size = pos, 4
	case protowire.Fixed64Type:
		f.off, f.size = pos, 8
	case protowire.BytesType:
		l, m := protowire.ConsumeVarint(rest)
		if m < 0 {
			return field{}, 0, fmt.Errorf("%w: bad length at offset %d: %v", ErrMalformed, pos, protowire.ParseError(m))
		}
		f.off = pos + int64(m)
		if l > uint64(end-f.off) {
			return field{}, 0, fmt.Errorf("%w: field %d at offset %d overruns its message", ErrMalformed, num, off)
		}
		f.size = int64(l)
	default:
		return field{}, 0, fmt.Errorf("%w: unsupported wire type %d at offset %d", ErrMalformed, typ, off)
	}

	if f.off+f.size > end {
		return field{}, 0, fmt.Errorf("%w: field %d at offset %d is truncated", ErrMalformed, num, off)
	}

	return f, f.off + f.size, nil
}

// walk calls fn for every field in [off, end).
func walk(r io.ReaderAt, off, end int64, fn func(field) error) error {
	for off < end {
		f, next, err := readField(r, off, end)
		if err != nil {
			return err
		}

		if err := fn(f); err != nil {
			return err
		}

		off = next
	}

	return nil
}

func expect(f field, typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrMalformed, f.num, f.typ, typ)
	}

	return nil
}

func readString(r io.ReaderAt, f field) (string, error) {
	if err := expect(f, protowire.BytesType); err != nil {
		return "", err
	}

	if f.size > maxInline {
		return "", fmt.Errorf("%w: field %d is %d bytes", ErrMalformed, f.num, f.size)
	}

	buf := make([]byte, f.size)
	if _, err := r.ReadAt(buf, f.off); err != nil && !(errors.Is(err, io.EOF) && f.size == 0) {
		return "", fmt.Errorf("failed to read field %d: %w", f.num, err)
	}

	return string(buf), nil
}

func readInt(f field) (int64, error) {
	if err := expect(f, protowire.VarintType); err != nil {
		return 0, err
	}

	return int64(f.varint), nil
}

func decodeModel(r io.ReaderAt, size int64) (*ModelProto, error) {
	m := &ModelProto{}

	err := walk(r, 0, size, func(f field) error {
		var err error
		switch f.num {
		case fieldIRVersion:
			m.IRVersion, err = readInt(f)
		case fieldProducerName:
			m.ProducerName, err = readString(r, f)
		case fieldProducerVersion:
			m.ProducerVersion, err = readString(r, f)
		case fieldDomain:
			m.Domain, err = readString(r, f)
		case fieldModelVersion:
			m.ModelVersion, err = readInt(f)
		case fieldDocString:
			m.DocString, err = readString(r, f)
		case fieldGraph:
			if err = expect(f, protowire.BytesType); err == nil {
				m.Graph, err = decodeGraph(r, f.off, f.off+f.size)
			}
		case fieldOpsetImport:
			var opset OperatorSetID
			if opset, err = decodeOpset(r, f); err == nil {
				m.OpsetImport = append(m.OpsetImport, opset)
			}
		case fieldMetadataProps:
			var entry StringStringEntry
			if entry, err = decodeEntry(r, f); err == nil {
				m.MetadataProps = append(m.MetadataProps, entry)
			}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if m.IRVersion <= 0 {
		return nil, fmt.Errorf("%w: missing ir_version", ErrMalformed)
	}

	return m, nil
}

func decodeGraph(r io.ReaderAt, off, end int64) (*GraphProto, error) {
	g := &GraphProto{}

	err := walk(r, off, end, func(f field) error {
		var err error
		switch f.num {
		case graphNode:
			var node NodeProto
			if node, err = decodeNode(r, f); err == nil {
				g.Nodes = append(g.Nodes, node)
			}
		case graphName:
			g.Name, err = readString(r, f)
		case graphInitializer:
			if err = expect(f, protowire.BytesType); err == nil {
				g.Initializers++
				g.InitializerBytes += f.size
			}
		case graphDocString:
			g.DocString, err = readString(r, f)
		case graphInput, graphOutput:
			var info ValueInfoProto
			if info, err = decodeValueInfo(r, f); err != nil {
				return err
			}
			if f.num == graphInput {
				g.Inputs = append(g.Inputs, info)
			} else {
				g.Outputs = append(g.Outputs, info)
			}
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	return g, nil
}

func decodeNode(r io.ReaderAt, msg field) (NodeProto, error) {
	var node NodeProto
	if err := expect(msg, protowire.BytesType); err != nil {
		return node, err
	}

	err := walk(r, msg.off, msg.off+msg.size, func(f field) error {
		var (
			s   string
			err error
		)
		switch f.num {
		case 1, 2, 3, 4, 7:
			if s, err = readString(r, f); err != nil {
				return err
			}
		default:
			return nil
		}

		switch f.num {
		case 1:
			node.Inputs = append(node.Inputs, s)
		case 2:
			node.Outputs = append(node.Outputs, s)
		case 3:
			node.Name = s
		case 4:
			node.OpType = s
		case 7:
			node.Domain = s
		}
		return nil
	})

	return node, err
}

func decodeValueInfo(r io.ReaderAt, msg field) (ValueInfoProto, error) {
	var info ValueInfoProto
	if err := expect(msg, protowire.BytesType); err != nil {
		return info, err
	}

	err := walk(r, msg.off, msg.off+msg.size, func(f field) error {
		var err error
		switch f.num {
		case 1:
			info.Name, err = readString(r, f)
		case 3:
			info.DocString, err = readString(r, f)
		}
		return err
	})

	return info, err
}

func decodeOpset(r io.ReaderAt, msg field) (OperatorSetID, error) {
	var opset OperatorSetID
	if err := expect(msg, protowire.BytesType); err != nil {
		return opset, err
	}

	err := walk(r, msg.off, msg.off+msg.size, func(f field) error {
		var err error
		switch f.num {
		case 1:
			opset.Domain, err = readString(r, f)
		case 2:
			opset.Version, err = readInt(f)
		}
		return err
	})

	return opset, err
}

func decodeEntry(r io.ReaderAt, msg field) (StringStringEntry, error) {
	var entry StringStringEntry
	if err := expect(msg, protowire.BytesType); err != nil {
		return entry, err
	}

	err := walk(r, msg.off, msg.off+msg.size, func(f field) error {
		var err error
		switch f.num {
		case 1:
			entry.Key, err = readString(r, f)
		case 2:
			entry.Value, err = readString(r, f)
		}
		return err
	})

	return entry, err
}

// Parse decodes a model from an in-memory buffer.
func Parse(data []byte) (*ModelProto, error) {
	m, err := decodeModel(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}

	return m, nil
}

// ParseFile decodes a model from a memory mapped file. Tensor payloads are
// skipped without being paged in.
func ParseFile(path string) (*ModelProto, int64, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map model file: %w", err)
	}
	defer r.Close()

	size := int64(r.Len())
	m, err := decodeModel(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse model %s: %w", path, err)
	}

	return m, size, nil
}
