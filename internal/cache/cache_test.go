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

package cache

import (
	"context"
	_ "crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"

	godigest "github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	ctx := context.Background()
	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = c.Get(ctx, "huggingface:bert-base-uncased")
	assert.ErrorIs(t, err, ErrNotFound)

	item := &Item{
		Key:       "huggingface:bert-base-uncased",
		Dir:       "/tmp/bert",
		Files:     map[string]godigest.Digest{"config.json": godigest.FromString("{}")},
		CreatedAt: time.Now(),
	}
	require.NoError(t, c.Put(ctx, item))

	got, err := c.Get(ctx, item.Key)
	require.NoError(t, err)
	assert.Equal(t, item.Dir, got.Dir)
	assert.Equal(t, item.Files, got.Files)

	require.NoError(t, c.Delete(ctx, item.Key))
	_, err = c.Get(ctx, item.Key)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, c.Delete(ctx, item.Key))
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	stale := &Item{Key: "stale", Dir: "/a", CreatedAt: time.Now().Add(-2 * TTL)}
	require.NoError(t, c.Put(ctx, stale))

	_, err = c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Put(ctx, &Item{Key: "fresh", Dir: "/b", CreatedAt: time.Now()}))

	data, err := os.ReadFile(filepath.Join(dir, storageFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"stale"`)
	assert.Contains(t, string(data), `"fresh"`)
}

func TestCacheCanceledContext(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Put(ctx, &Item{Key: "key"}), context.Canceled)
}

func TestCacheSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := New(dir)
	require.NoError(t, err)
	b, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, a.Put(ctx, &Item{Key: "k", Dir: "/x", CreatedAt: time.Now()}))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "/x", got.Dir)
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_length": 20}`), 0644))

	want := godigest.FromString(`{"max_length": 20}`)

	got, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A second call may be served from extended attributes.
	got, err = Digest(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Digest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDigestFilesAndVerify(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0644))

	files, err := DigestFiles(dir, []string{"config.json", "tokenizer_config.json"})
	require.NoError(t, err)
	assert.Equal(t, map[string]godigest.Digest{"config.json": godigest.FromString("{}")}, files)

	item := &Item{Key: "local:x", Dir: dir, Files: files, CreatedAt: time.Now()}
	assert.True(t, Verify(item))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"changed": true}`), 0644))
	assert.False(t, Verify(item))

	require.NoError(t, os.Remove(filepath.Join(dir, "config.json")))
	assert.False(t, Verify(item))
}
