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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/internal/cache"
	"github.com/uni-industries/txtai-fork/pkg/checkpoint"
	"github.com/uni-industries/txtai-fork/pkg/format"
	"github.com/uni-industries/txtai-fork/pkg/metadata"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
	"github.com/uni-industries/txtai-fork/pkg/onnx"
)

// Model is whatever Load produced: a loaded model, the artifact passed through
// or the raw identifier for an unsupported task.
type Model = any

// SerializedLoader loads a serialized graph from a path or, when path is
// empty, from data. A nil data buffer is an empty graph.
type SerializedLoader interface {
	LoadSerialized(ctx context.Context, path string, data []byte, configPath string) (metadata.Holder, error)
}

// CheckpointLoader loads a hub checkpoint with the given model class.
type CheckpointLoader interface {
	LoadCheckpoint(ctx context.Context, id string, class checkpoint.Class) (metadata.Holder, error)
}

// Resolver decides which loader handles an artifact.
type Resolver struct {
	serialized SerializedLoader
	checkpoint CheckpointLoader
}

// NewResolver creates a resolver dispatching to the given loaders.
func NewResolver(serialized SerializedLoader, checkpoint CheckpointLoader) *Resolver {
	return &Resolver{serialized: serialized, checkpoint: checkpoint}
}

// Load classifies artifact and loads it. Buffers and paths to existing files
// are serialized graphs and ignore task. Other non string values are returned
// unchanged. Remaining strings are checkpoint identifiers loaded with the
// class of task, or returned unchanged when task is not supported.
func (r *Resolver) Load(ctx context.Context, artifact any, configPath string, task Task) (Model, error) {
	kind := format.Detect(artifact)
	logrus.Debugf("models: artifact classified as %s", kind)

	switch kind {
	case format.SerializedGraph:
		var (
			path string
			data []byte
		)
		switch v := artifact.(type) {
		case []byte:
			data = v
		case string:
			path = v
		}

		m, err := r.serialized.LoadSerialized(ctx, path, data, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load serialized graph: %w", err)
		}
		return m, nil

	case format.HubCheckpoint:
		id := artifact.(string)

		class, ok := task.Class()
		if !ok {
			logrus.Debugf("models: task %q not supported, returning %s unchanged", task, id)
			return id, nil
		}

		m, err := r.checkpoint.LoadCheckpoint(ctx, id, class)
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint %s: %w", id, err)
		}
		return m, nil

	default:
		return artifact, nil
	}
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// DefaultCacheDir is where checkpoint metadata is fetched to.
func DefaultCacheDir() string {
	if dir := os.Getenv("MODRES_CACHE_DIR"); dir != "" {
		return dir
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "modres")
}

// Default returns the resolver used by the package level functions. It parses
// serialized graphs in process and fetches checkpoint metadata through the
// built in providers into DefaultCacheDir.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewDefaultResolver(DefaultCacheDir(), transfer.Options{})
	})

	return defaultResolver
}

// NewDefaultResolver creates a resolver with the built in loaders, fetching
// checkpoints through every built in provider into cacheDir.
func NewDefaultResolver(cacheDir string, opts transfer.Options, loaderOpts ...checkpoint.Option) *Resolver {
	return NewCheckpointResolver(modelprovider.NewRegistry(opts), cacheDir, loaderOpts...)
}

// NewCheckpointResolver creates a resolver parsing serialized graphs in
// process and fetching checkpoints through providers into cacheDir. A cache
// that can not be opened is skipped.
func NewCheckpointResolver(providers checkpoint.ProviderResolver, cacheDir string, loaderOpts ...checkpoint.Option) *Resolver {
	if c, err := cache.New(cacheDir); err != nil {
		logrus.Warnf("models: checkpoint cache disabled: %v", err)
	} else {
		loaderOpts = append([]checkpoint.Option{checkpoint.WithCache(c)}, loaderOpts...)
	}

	return NewResolver(
		onnx.NewLoader(),
		checkpoint.NewLoader(providers, cacheDir, loaderOpts...),
	)
}

// Load loads artifact with the default resolver.
func Load(ctx context.Context, artifact any, configPath string, task Task) (Model, error) {
	return Default().Load(ctx, artifact, configPath, task)
}
