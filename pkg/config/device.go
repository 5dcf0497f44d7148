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

package config

type Device struct {
	// GPU is the raw device request: empty, a bool, an ordinal or a reference.
	GPU      string
	Describe bool
}

func NewDevice() *Device {
	return &Device{
		GPU:      "",
		Describe: false,
	}
}

func (d *Device) Validate() error {
	return nil
}
