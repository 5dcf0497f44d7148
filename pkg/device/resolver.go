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
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

// Resolver maps device requests onto device references. Backends are probed
// in a fixed order: gpu, then unified memory, then the alternatives in list
// order, falling back to the CPU.
type Resolver struct {
	gpu          Backend
	unified      Backend
	alternatives []Backend
}

// NewResolver creates a resolver over the given backends.
func NewResolver(gpu, unified Backend, alternatives ...Backend) *Resolver {
	return &Resolver{
		gpu:          gpu,
		unified:      unified,
		alternatives: alternatives,
	}
}

// defaultResolver probes the host.
var defaultResolver = NewResolver(CUDA, MPS, Alternatives...)

// Default returns the resolver backed by the host probes.
func Default() *Resolver {
	return defaultResolver
}

// DeviceID translates a request into a device id. Handles are returned
// unchanged. Absent requests and hosts without accelerators give CPU before
// any coercion is attempted. Otherwise true selects the first accelerator,
// false the CPU, and anything else is coerced to an ordinal without bounds
// checking.
func (r *Resolver) DeviceID(req Request) (ID, error) {
	if req.kind == requestHandle {
		return HandleID(req.handle), nil
	}

	if req.kind == requestAuto || !r.HasAccelerator() {
		return IndexID(CPU), nil
	}

	switch req.kind {
	case requestFlag:
		if req.flag {
			return IndexID(0), nil
		}
		return IndexID(CPU), nil
	case requestIndex:
		return IndexID(req.index), nil
	case requestName:
		idx, err := strconv.Atoi(strings.TrimSpace(req.name))
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q is not a device ordinal", ErrInvalidDeviceRequest, req.name)
		}
		return IndexID(idx), nil
	case requestValue:
		idx, err := coerceIndex(req.value)
		if err != nil {
			return ID{}, err
		}
		return IndexID(idx), nil
	default:
		return ID{}, fmt.Errorf("%w: unknown request kind %d", ErrInvalidDeviceRequest, req.kind)
	}
}

// HasAccelerator reports whether any accelerator backend is available.
func (r *Resolver) HasAccelerator() bool {
	return r.gpu.Available() || r.unified.Available() || r.FindDevice() != ""
}

// FindDevice returns the name of the first available alternative accelerator,
// or an empty string when none is present.
func (r *Resolver) FindDevice() string {
	for _, b := range r.alternatives {
		if b.Available() {
			return b.Name
		}
	}

	return ""
}

// Device returns the handle for id, constructing it from Reference unless id
// already wraps one.
func (r *Resolver) Device(id ID) (Handle, error) {
	if h, ok := id.Handle(); ok {
		return h, nil
	}

	ref, err := r.Reference(id)
	if err != nil {
		return Handle{}, err
	}

	return ParseHandle(ref)
}

// Reference returns the device reference string for id. Reference ids pass
// through unchanged and negative indexes always map to "cpu".
func (r *Resolver) Reference(id ID) (string, error) {
	switch id.kind {
	case idReference:
		return id.ref, nil
	case idHandle:
		return id.handle.String(), nil
	}

	if id.index < 0 {
		return TypeCPU, nil
	}

	if r.gpu.Available() {
		return fmt.Sprintf("%s:%d", r.gpu.Name, id.index), nil
	}

	if r.unified.Available() {
		return r.unified.Name, nil
	}

	if name := r.FindDevice(); name != "" {
		return name, nil
	}

	logrus.Debugf("device: no accelerator backend matched index %d", id.index)
	return "", fmt.Errorf("%w: can not place device %d", ErrNoAcceleratorAvailable, id.index)
}

// Info describes the availability of one backend.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
}

// Host summarizes the probe results for the machine.
type Host struct {
	Backends    []Info `json:"backends" yaml:"backends"`
	TotalMemory uint64 `json:"total_memory" yaml:"total_memory"`
}

// Describe probes every backend in priority order. Memory is reported as zero
// when it can not be read.
func (r *Resolver) Describe() Host {
	backends := append([]Backend{r.gpu, r.unified}, r.alternatives...)

	h := Host{Backends: make([]Info, 0, len(backends))}
	for _, b := range backends {
		h.Backends = append(h.Backends, Info{Name: b.Name, Available: b.Available()})
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
	} else {
		logrus.Debugf("device: failed to read host memory: %v", err)
	}

	return h
}

// DeviceID resolves req with the host probes.
func DeviceID(req Request) (ID, error) {
	return defaultResolver.DeviceID(req)
}

// HasAccelerator probes the host for any accelerator.
func HasAccelerator() bool {
	return defaultResolver.HasAccelerator()
}

// FindDevice probes the host for an alternative accelerator.
func FindDevice() string {
	return defaultResolver.FindDevice()
}

// Get returns the handle for id on this host.
func Get(id ID) (Handle, error) {
	return defaultResolver.Device(id)
}

// Reference returns the reference for id on this host.
func Reference(id ID) (string, error) {
	return defaultResolver.Reference(id)
}
