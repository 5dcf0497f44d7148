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

package device

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDeviceRequest is returned when a device request can not be
	// coerced into a device index.
	ErrInvalidDeviceRequest = errors.New("invalid device request")

	// ErrNoAcceleratorAvailable is returned when a non-negative device index is
	// resolved but no accelerator backend is present on the host.
	ErrNoAcceleratorAvailable = errors.New("no accelerator available")

	// ErrInvalidDeviceReference is returned when a device reference string does
	// not name a known device family.
	ErrInvalidDeviceReference = errors.New("invalid device reference")
)

// CPU is the sentinel device index meaning "run on the host CPU".
const CPU = -1

// Device families understood by ParseHandle.
const (
	TypeCPU  = "cpu"
	TypeCUDA = "cuda"
	TypeMPS  = "mps"
	TypeXPU  = "xpu"
	TypeNPU  = "npu"
)

var knownTypes = []string{TypeCPU, TypeCUDA, TypeMPS, TypeXPU, TypeNPU}

// Handle is a resolved device, the equivalent of a constructed tensor device.
type Handle struct {
	// Type is the device family, e.g. "cuda".
	Type string

	// Index is the ordinal within the family, -1 when the reference carries none.
	Index int
}

// String renders the handle as a device reference such as "cuda:0" or "mps".
func (h Handle) String() string {
	if h.Index < 0 {
		return h.Type
	}

	return fmt.Sprintf("%s:%d", h.Type, h.Index)
}

// ParseHandle builds a handle from a device reference string.
func ParseHandle(ref string) (Handle, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return Handle{}, fmt.Errorf("%w: empty reference", ErrInvalidDeviceReference)
	}

	family, ordinal, hasOrdinal := strings.Cut(ref, ":")
	if !isKnownType(family) {
		return Handle{}, fmt.Errorf("%w: unknown device type %q (expected one of %s)", ErrInvalidDeviceReference, family, strings.Join(knownTypes, ", "))
	}

	h := Handle{Type: family, Index: -1}
	if hasOrdinal {
		idx, err := strconv.Atoi(ordinal)
		if err != nil || idx < 0 {
			return Handle{}, fmt.Errorf("%w: invalid device ordinal %q", ErrInvalidDeviceReference, ordinal)
		}

		h.Index = idx
	}

	return h, nil
}

func isKnownType(family string) bool {
	for _, t := range knownTypes {
		if t == family {
			return true
		}
	}

	return false
}

type idKind int

const (
	idIndex idKind = iota
	idReference
	idHandle
)

// ID is the result of DeviceID: a plain device index, a reference string
// passed through by the caller, or an already resolved handle.
type ID struct {
	kind   idKind
	index  int
	ref    string
	handle Handle
}

// IndexID returns an ID for the given device index. Negative values mean CPU.
func IndexID(index int) ID {
	return ID{kind: idIndex, index: index}
}

// ReferenceID returns an ID that resolves to ref unchanged.
func ReferenceID(ref string) ID {
	return ID{kind: idReference, ref: ref}
}

// HandleID returns an ID wrapping an already resolved handle.
func HandleID(h Handle) ID {
	return ID{kind: idHandle, handle: h}
}

// Index returns the device index and whether the ID holds one.
func (id ID) Index() (int, bool) {
	return id.index, id.kind == idIndex
}

// Handle returns the wrapped handle and whether the ID holds one.
func (id ID) Handle() (Handle, bool) {
	return id.handle, id.kind == idHandle
}

// String renders the ID for logs and CLI output.
func (id ID) String() string {
	switch id.kind {
	case idReference:
		return id.ref
	case idHandle:
		return id.handle.String()
	default:
		return strconv.Itoa(id.index)
	}
}

type requestKind int

const (
	requestAuto requestKind = iota
	requestFlag
	requestIndex
	requestName
	requestHandle
	requestValue
)

// Request is a user facing device request. Exactly one variant is set, chosen
// by the constructor used to build it.
type Request struct {
	kind   requestKind
	flag   bool
	index  int
	name   string
	handle Handle
	value  any
}

// Auto is the absent request.
func Auto() Request {
	return Request{kind: requestAuto}
}

// Flag requests the first accelerator (true) or the CPU (false).
func Flag(enabled bool) Request {
	return Request{kind: requestFlag, flag: enabled}
}

// Index requests a specific accelerator ordinal.
func Index(index int) Request {
	return Request{kind: requestIndex, index: index}
}

// Name requests a device by a string identifier, coerced to an ordinal by DeviceID.
func Name(name string) Request {
	return Request{kind: requestName, name: name}
}

// FromHandle requests an already resolved device.
func FromHandle(h Handle) Request {
	return Request{kind: requestHandle, handle: h}
}

// Value requests a device by an arbitrary value, coerced to an ordinal by
// DeviceID. Floats truncate toward zero.
func Value(v any) Request {
	return Request{kind: requestValue, value: v}
}

// ParseRequest maps a dynamic value, typically read from flags or config
// files, onto a Request. It never fails: values that can not be coerced to an
// ordinal are carried as is and only rejected by DeviceID.
func ParseRequest(v any) Request {
	switch value := v.(type) {
	case nil:
		return Auto()
	case Request:
		return value
	case Handle:
		return FromHandle(value)
	case *Handle:
		if value == nil {
			return Auto()
		}
		return FromHandle(*value)
	case bool:
		return Flag(value)
	case int:
		return Index(value)
	case int8:
		return Index(int(value))
	case int16:
		return Index(int(value))
	case int32:
		return Index(int(value))
	case int64:
		return Index(int(value))
	case uint8:
		return Index(int(value))
	case uint16:
		return Index(int(value))
	case uint32:
		return Index(int(value))
	case string:
		s := strings.TrimSpace(value)
		switch strings.ToLower(s) {
		case "":
			return Auto()
		case "true":
			return Flag(true)
		case "false":
			return Flag(false)
		}
		return Name(s)
	default:
		return Value(v)
	}
}

// coerceIndex converts a raw request value into an ordinal.
func coerceIndex(v any) (int, error) {
	switch value := v.(type) {
	case uint:
		if uint64(value) > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows a device ordinal", ErrInvalidDeviceRequest, value)
		}
		return int(value), nil
	case uint64:
		if value > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows a device ordinal", ErrInvalidDeviceRequest, value)
		}
		return int(value), nil
	case uintptr:
		if uint64(value) > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows a device ordinal", ErrInvalidDeviceRequest, value)
		}
		return int(value), nil
	case float32:
		return truncate(float64(value))
	case float64:
		return truncate(value)
	case fmt.Stringer:
		idx, err := strconv.Atoi(strings.TrimSpace(value.String()))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a device ordinal", ErrInvalidDeviceRequest, value.String())
		}
		return idx, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidDeviceRequest, v)
	}
}

func truncate(f float64) (int, error) {
	t := math.Trunc(f)
	if math.IsNaN(f) || t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v is not a device ordinal", ErrInvalidDeviceRequest, f)
	}

	return int(t), nil
}
