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

package models

import (
	"github.com/uni-industries/txtai-fork/pkg/device"
	"github.com/uni-industries/txtai-fork/pkg/metadata"
)

// DeviceID resolves a device request given as nil, a bool, a number, a
// string or a device handle. Hosts without an accelerator always give CPU.
func DeviceID(gpu any) (device.ID, error) {
	return device.DeviceID(device.ParseRequest(gpu))
}

// Device returns the device handle for id.
func Device(id device.ID) (device.Handle, error) {
	return device.Get(id)
}

// Reference returns the device reference string for id.
func Reference(id device.ID) (string, error) {
	return device.Reference(id)
}

// HasAccelerator reports whether the host has any accelerator.
func HasAccelerator() bool {
	return device.HasAccelerator()
}

// FindDevice returns the first alternative accelerator on the host, or "".
func FindDevice() string {
	return device.FindDevice()
}

// CheckLength copies the position bound of config onto a tokenizer whose
// max length is still unbounded.
func CheckLength(config metadata.Holder, tokenizer *metadata.Tokenizer) {
	metadata.CheckLength(config, tokenizer)
}

// MaxLength returns the max sequence length for config and tokenizer.
func MaxLength(config metadata.Holder, tokenizer *metadata.Tokenizer) int {
	return metadata.MaxLength(config, tokenizer)
}
