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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const scheme = "file://"

// Provider serves checkpoints that already live in a local directory.
type Provider struct{}

// New creates a new local provider instance.
func New() *Provider {
	return &Provider{}
}

// Name returns the name of this provider.
func (p *Provider) Name() string {
	return "local"
}

// SupportsURL reports whether url is a file:// URL or names an existing
// directory.
func (p *Provider) SupportsURL(url string) bool {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, scheme) {
		return true
	}

	info, err := os.Stat(url)
	return err == nil && info.IsDir()
}

// Fetch returns the checkpoint directory itself; nothing is copied into
// destDir.
func (p *Provider) Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := strings.TrimPrefix(strings.TrimSpace(modelURL), scheme)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat checkpoint directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("checkpoint path %s is not a directory", abs)
	}

	return abs, nil
}

// CheckAuth always succeeds.
func (p *Provider) CheckAuth() error {
	return nil
}
