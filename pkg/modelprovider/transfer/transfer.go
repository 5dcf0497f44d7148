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

package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/uni-industries/txtai-fork/internal/pb"
)

// DefaultConcurrency is the number of files fetched in parallel.
const DefaultConcurrency = 4

var defaultRetryOpts = []retry.Option{
	retry.Attempts(3),
	retry.DelayType(retry.BackOffDelay),
	retry.Delay(1 * time.Second),
	retry.MaxDelay(5 * time.Second),
	retry.LastErrorOnly(true),
}

// FetchFunc fetches one file of a model into destPath. It returns an error
// wrapping fs.ErrNotExist when the model has no such file.
type FetchFunc func(ctx context.Context, file, destPath string) error

// Options tunes Files.
type Options struct {
	Concurrency int

	// RetryOpts replaces the default backoff.
	RetryOpts []retry.Option

	// Progress reports transfers when set.
	Progress *pb.ProgressBar
}

// Files fetches every file into destDir with bounded concurrency, retrying
// transient failures. Files the model does not have are skipped and the
// names of the fetched ones are returned.
func Files(ctx context.Context, destDir string, files []string, opts Options, fetch FetchFunc) ([]string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	retryOpts := opts.RetryOpts
	if retryOpts == nil {
		retryOpts = defaultRetryOpts
	}

	found := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	retryOpts = append(slices.Clip(retryOpts),
		retry.Context(gctx),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, fs.ErrNotExist) }),
	)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			destPath := filepath.Join(destDir, filepath.FromSlash(file))
			err := retry.Do(func() error {
				return fetch(gctx, file, destPath)
			}, retryOpts...)

			switch {
			case err == nil:
				found[i] = true
				return nil
			case errors.Is(err, fs.ErrNotExist):
				logrus.Debugf("transfer: %s not present, skipping", file)
				return nil
			default:
				return fmt.Errorf("failed to fetch %s: %w", file, err)
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetched := make([]string, 0, len(files))
	for i, ok := range found {
		if ok {
			fetched = append(fetched, files[i])
		}
	}

	return fetched, nil
}
