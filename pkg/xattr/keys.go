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

package xattr

import "strings"

const (
	// Prefix is required for user space attributes on Linux.
	Prefix = "user."

	// Keys recording the state of a file when its digest was computed.
	KeySize   = "modres.size"
	KeyMtime  = "modres.mtime"
	KeySha256 = "modres.sha256"
)

// MakeKey joins parts into a fully qualified attribute key.
func MakeKey(parts ...string) string {
	return Prefix + strings.Join(parts, ".")
}
