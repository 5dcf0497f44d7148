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

package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/internal/cache"
	"github.com/uni-industries/txtai-fork/pkg/format"
	"github.com/uni-industries/txtai-fork/pkg/metadata"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider"
)

// ProviderResolver selects the provider serving a checkpoint identifier.
// *modelprovider.Registry implements it.
type ProviderResolver interface {
	GetProvider(modelURL string) (modelprovider.Provider, error)
}

// Loader resolves checkpoint identifiers into models, fetching the metadata
// files into a local directory and remembering them in a cache.
type Loader struct {
	providers ProviderResolver
	cache     cache.Cache
	cacheDir  string
	files     *hashset.Set
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache records fetched checkpoints in c so later loads skip the fetch.
func WithCache(c cache.Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithFiles fetches extra files alongside the metadata files.
func WithFiles(names ...string) Option {
	return func(l *Loader) {
		for _, name := range names {
			l.files.Add(name)
		}
	}
}

// NewLoader creates a loader fetching into cacheDir.
func NewLoader(providers ProviderResolver, cacheDir string, opts ...Option) *Loader {
	l := &Loader{
		providers: providers,
		cacheDir:  cacheDir,
		files:     hashset.New(),
	}

	for _, name := range format.MetadataPatterns {
		l.files.Add(name)
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Files returns the names fetched for every checkpoint, sorted.
func (l *Loader) Files() []string {
	names := make([]string, 0, l.files.Size())
	for _, v := range l.files.Values() {
		names = append(names, v.(string))
	}

	sort.Strings(names)
	return names
}

// LoadCheckpoint implements the checkpoint collaborator of the resolver.
func (l *Loader) LoadCheckpoint(ctx context.Context, id string, class Class) (metadata.Holder, error) {
	m, err := l.Load(ctx, id, class)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Load resolves id, fetching its metadata unless a verified cached copy
// exists, and returns the model with its configuration and tokenizer.
func (l *Loader) Load(ctx context.Context, id string, class Class) (*Model, error) {
	provider, err := l.providers.GetProvider(id)
	if err != nil {
		return nil, err
	}

	key := provider.Name() + ":" + id
	dir := l.cached(ctx, key)

	if dir == "" {
		files := l.Files()
		dest := filepath.Join(l.cacheDir, sanitize(provider.Name()), sanitize(id))

		logrus.Infof("checkpoint: fetching %s from %s", id, provider.Name())
		if dir, err = provider.Fetch(ctx, id, dest, files); err != nil {
			return nil, fmt.Errorf("failed to fetch checkpoint %s: %w", id, err)
		}

		l.remember(ctx, key, dir, files)
	}

	config, err := metadata.ReadConfig(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", id, err)
	}

	tokenizer, err := metadata.ReadTokenizer(filepath.Join(dir, TokenizerConfigFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", id, err)
	}

	return &Model{
		ID:        id,
		Class:     class,
		Provider:  provider.Name(),
		Dir:       dir,
		Config:    config,
		Tokenizer: tokenizer,
	}, nil
}

// cached returns the directory of a fresh, unmodified cache entry.
func (l *Loader) cached(ctx context.Context, key string) string {
	if l.cache == nil {
		return ""
	}

	item, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logrus.Warnf("checkpoint: failed to read cache for %s: %v", key, err)
		}
		return ""
	}

	if !cache.Verify(item) {
		logrus.Debugf("checkpoint: cached files of %s changed, refetching", key)
		if err := l.cache.Delete(ctx, key); err != nil {
			logrus.Warnf("checkpoint: failed to evict %s: %v", key, err)
		}
		return ""
	}

	logrus.Debugf("checkpoint: cache hit for %s in %s", key, item.Dir)
	return item.Dir
}

func (l *Loader) remember(ctx context.Context, key, dir string, files []string) {
	if l.cache == nil {
		return
	}

	digests, err := cache.DigestFiles(dir, files)
	if err != nil {
		logrus.Warnf("checkpoint: failed to digest files of %s: %v", key, err)
		return
	}

	if err := l.cache.Put(ctx, &cache.Item{
		Key:       key,
		Dir:       dir,
		Files:     digests,
		CreatedAt: time.Now(),
	}); err != nil {
		logrus.Warnf("checkpoint: failed to cache %s: %v", key, err)
	}
}

var sanitizer = strings.NewReplacer("://", "--", "/", "--", ":", "-", "@", "-", "\\", "--")

// sanitize turns an identifier into a single path segment.
func sanitize(id string) string {
	s := sanitizer.Replace(strings.TrimSpace(id))
	if s == "" || s == "." || s == ".." {
		return "_"
	}

	return s
}
