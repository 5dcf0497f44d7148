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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeKey(t *testing.T) {
	assert.Equal(t, "user.modres", MakeKey("modres"))
	assert.Equal(t, "user.modres.sha256", MakeKey(KeySha256))
	assert.Equal(t, "user.modres.config.digest", MakeKey("modres", "config", "digest"))
}

func TestSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	key := MakeKey(KeySha256)
	if err := Set(path, key, []byte("probe")); err != nil {
		t.Skip("filesystem does not support extended attributes")
	}

	value := []byte("sha256:abc")
	require.NoError(t, Set(path, key, value))

	got, err := Get(path, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestGetMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := Get(path, MakeKey("modres", "missing"))
	assert.Error(t, err)
}
