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

//go:build !linux && !darwin

package xattr

import "errors"

// Get always fails on platforms without extended attributes.
func Get(path, key string) ([]byte, error) {
	return nil, errors.ErrUnsupported
}

// Set always fails on platforms without extended attributes.
func Set(path, key string, value []byte) error {
	return errors.ErrUnsupported
}
