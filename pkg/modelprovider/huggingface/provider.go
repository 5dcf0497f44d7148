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

package huggingface

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/uni-industries/txtai-fork/pkg/hfhub"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

// Provider fetches checkpoint files from the Hugging Face hub.
type Provider struct {
	opts transfer.Options

	// newClient is replaced in tests.
	newClient func() (*hfhub.Client, error)
}

// New creates a new Hugging Face provider instance.
func New(opts transfer.Options) *Provider {
	return &Provider{opts: opts, newClient: hfhub.NewClient}
}

// Name returns the name of this provider.
func (p *Provider) Name() string {
	return "huggingface"
}

// SupportsURL reports whether url is a huggingface.co URL or an hf:// id.
// Bare ids reach this provider through the registry fallback.
func (p *Provider) SupportsURL(url string) bool {
	url = strings.TrimSpace(url)
	return strings.Contains(url, "huggingface.co") || strings.HasPrefix(url, "hf://")
}

// Fetch downloads the requested files of the repo into destDir.
func (p *Provider) Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error) {
	repo, err := hfhub.ParseModelURL(modelURL)
	if err != nil {
		return "", err
	}

	client, err := p.newClient()
	if err != nil {
		return "", fmt.Errorf("failed to create hub client: %w", err)
	}
	client.Progress = p.opts.Progress

	if _, err := transfer.Files(ctx, destDir, files, p.opts, func(ctx context.Context, file, destPath string) error {
		return client.DownloadFile(ctx, repo, file, destPath)
	}); err != nil {
		return "", fmt.Errorf("failed to fetch %s from Hugging Face: %w", repo.ID(), err)
	}

	return destDir, nil
}

// CheckAuth verifies that a hub token is configured.
func (p *Provider) CheckAuth() error {
	token, err := hfhub.GetToken()
	if err != nil {
		return err
	}

	if token != "" {
		return nil
	}

	if _, err := exec.LookPath("huggingface-cli"); err == nil {
		cmd := exec.Command("huggingface-cli", "whoami")
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("not authenticated with Hugging Face. Please set HF_TOKEN or run: huggingface-cli login")
}
