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
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	json "github.com/goccy/go-json"
	godigest "github.com/opencontainers/go-digest"
)

const (
	// TTL is how long a fetched checkpoint stays valid.
	TTL = 24 * time.Hour

	// FileLockRetryDelay is the delay between attempts to take the lock.
	FileLockRetryDelay = 100 * time.Millisecond

	storageFile = "modres-cache.json"
)

// ErrNotFound is returned when no fresh item exists for a key.
var ErrNotFound = errors.New("item not found")

// Cache records which checkpoint metadata has already been fetched.
type Cache interface {
	// Get returns the fresh item stored under key.
	Get(ctx context.Context, key string) (*Item, error)

	// Put inserts or replaces an item.
	Put(ctx context.Context, item *Item) error

	// Delete removes the item stored under key, if any.
	Delete(ctx context.Context, key string) error
}

// Item is a fetched checkpoint.
type Item struct {
	// Key identifies the checkpoint, e.g. "huggingface:bert-base-uncased".
	Key string `json:"key"`

	// Dir is the local directory holding the fetched files.
	Dir string `json:"dir"`

	// Files maps each fetched file name to its digest.
	Files map[string]godigest.Digest `json:"files"`

	// CreatedAt is when the files were fetched.
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the item is older than TTL.
func (i *Item) Expired(now time.Time) bool {
	return now.Sub(i.CreatedAt) > TTL
}

type cache struct {
	storageDir string
	flock      *flock.Flock
}

// New creates a cache persisted under storageDir.
func New(storageDir string) (Cache, error) {
	c := &cache{storageDir: storageDir}

	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, err
	}

	c.flock = flock.New(c.storagePath() + ".lock")
	return c, nil
}

func (c *cache) storagePath() string {
	return filepath.Join(c.storageDir, storageFile)
}

// readItems loads the item index. The caller must hold the lock.
func (c *cache) readItems() (map[string]*Item, error) {
	data, err := os.ReadFile(c.storagePath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Item), nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return make(map[string]*Item), nil
	}

	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	itemMap := make(map[string]*Item, len(items))
	for _, item := range items {
		itemMap[item.Key] = item
	}

	return itemMap, nil
}

// writeItems replaces the item index. The caller must hold the lock.
func (c *cache) writeItems(itemsMap map[string]*Item) error {
	items := make([]*Item, 0, len(itemsMap))
	for _, item := range itemsMap {
		items = append(items, item)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	tmp := c.storagePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, c.storagePath())
}

func (c *cache) prune(itemsMap map[string]*Item) {
	now := time.Now()
	for key, item := range itemsMap {
		if item.Expired(now) {
			delete(itemsMap, key)
		}
	}
}

func (c *cache) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.flock.TryLockContext(ctx, FileLockRetryDelay)
	return err
}

// Get returns the fresh item stored under key.
func (c *cache) Get(ctx context.Context, key string) (*Item, error) {
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.flock.Unlock()

	items, err := c.readItems()
	if err != nil {
		return nil, err
	}

	item, ok := items[key]
	if !ok || item.Expired(time.Now()) {
		return nil, ErrNotFound
	}

	return item, nil
}

// Put inserts or replaces an item and drops expired ones.
func (c *cache) Put(ctx context.Context, item *Item) error {
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.flock.Unlock()

	itemsMap, err := c.readItems()
	if err != nil {
		return err
	}

	itemsMap[item.Key] = item
	c.prune(itemsMap)

	return c.writeItems(itemsMap)
}

// Delete removes the item stored under key.
func (c *cache) Delete(ctx context.Context, key string) error {
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.flock.Unlock()

	itemsMap, err := c.readItems()
	if err != nil {
		return err
	}

	if _, ok := itemsMap[key]; !ok {
		return nil
	}

	delete(itemsMap, key)
	return c.writeItems(itemsMap)
}
