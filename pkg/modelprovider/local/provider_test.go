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

package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_SupportsURL(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.onnx")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	p := New()
	assert.True(t, p.SupportsURL(dir))
	assert.True(t, p.SupportsURL("file:///does/not/matter"))
	assert.False(t, p.SupportsURL(file))
	assert.False(t, p.SupportsURL("org/model"))
	assert.Equal(t, "local", p.Name())
	assert.NoError(t, p.CheckAuth())
}

func TestProvider_Fetch(t *testing.T) {
	dir := t.TempDir()
	p := New()

	got, err := p.Fetch(context.Background(), "file://"+dir, t.TempDir(), []string{"config.json"})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = p.Fetch(context.Background(), filepath.Join(dir, "missing"), "", nil)
	assert.Error(t, err)

	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))
	_, err = p.Fetch(context.Background(), file, "", nil)
	assert.Error(t, err)
}
