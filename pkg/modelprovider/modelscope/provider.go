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

package modelscope

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/uni-industries/txtai-fork/pkg/hfhub"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

const (
	// ModelScopeBaseURL is the default endpoint.
	ModelScopeBaseURL = "https://modelscope.cn"

	// DefaultRevision is the branch files are resolved against.
	DefaultRevision = "master"

	scheme = "modelscope://"
)

// Provider fetches checkpoint files from ModelScope.
type Provider struct {
	opts transfer.Options

	// baseURL and client are replaced in tests.
	baseURL string
	client  *http.Client
}

// New creates a new ModelScope provider instance.
func New(opts transfer.Options) *Provider {
	return &Provider{opts: opts, client: http.DefaultClient}
}

// Name returns the name of this provider.
func (p *Provider) Name() string {
	return "modelscope"
}

// SupportsURL reports whether url is a modelscope.cn URL or a modelscope://
// id.
func (p *Provider) SupportsURL(url string) bool {
	url = strings.TrimSpace(url)
	return strings.Contains(url, "modelscope.cn") || strings.HasPrefix(url, scheme)
}

// Fetch downloads the requested files of the repo into destDir.
func (p *Provider) Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error) {
	owner, repo, err := parseModelURL(modelURL)
	if err != nil {
		return "", err
	}

	base := p.endpoint()
	token := os.Getenv("MODELSCOPE_API_TOKEN")

	if _, err := transfer.Files(ctx, destDir, files, p.opts, func(ctx context.Context, file, destPath string) error {
		return hfhub.Download(ctx, p.client, fileURL(base, owner, repo, file), token, destPath, p.opts.Progress)
	}); err != nil {
		return "", fmt.Errorf("failed to fetch %s/%s from ModelScope: %w", owner, repo, err)
	}

	return destDir, nil
}

// CheckAuth verifies that a ModelScope token or credentials file exists.
func (p *Provider) CheckAuth() error {
	if os.Getenv("MODELSCOPE_API_TOKEN") != "" {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	if _, err := os.Stat(filepath.Join(homeDir, ".modelscope", "credentials")); err == nil {
		return nil
	}

	return fmt.Errorf("not authenticated with ModelScope. Please set MODELSCOPE_API_TOKEN or run: modelscope login")
}

func (p *Provider) endpoint() string {
	if p.baseURL != "" {
		return p.baseURL
	}

	if domain := os.Getenv("MODELSCOPE_DOMAIN"); domain != "" {
		if !strings.Contains(domain, "://") {
			domain = "https://" + domain
		}
		return strings.TrimSuffix(domain, "/")
	}

	return ModelScopeBaseURL
}

func fileURL(base, owner, repo, file string) string {
	q := url.Values{}
	q.Set("Revision", DefaultRevision)
	q.Set("FilePath", file)

	return fmt.Sprintf("%s/api/v1/models/%s/%s/repo?%s", base, owner, repo, q.Encode())
}

// parseModelURL parses a ModelScope URL or owner/repo id.
func parseModelURL(modelURL string) (owner, repo string, err error) {
	modelURL = strings.TrimSuffix(strings.TrimSpace(modelURL), "/")
	modelURL = strings.TrimPrefix(modelURL, scheme)

	if strings.HasPrefix(modelURL, "http://") || strings.HasPrefix(modelURL, "https://") {
		u, err := url.Parse(modelURL)
		if err != nil {
			return "", "", fmt.Errorf("invalid URL: %w", err)
		}

		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) > 0 && parts[0] == "models" {
			parts = parts[1:]
		}

		if len(parts) < 2 {
			return "", "", fmt.Errorf("invalid ModelScope URL format, expected https://modelscope.cn/models/owner/repo")
		}

		owner, repo = parts[0], parts[1]
	} else {
		parts := strings.Split(modelURL, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid model identifier, expected format: owner/repo")
		}

		owner, repo = parts[0], parts[1]
	}

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("owner and repository name cannot be empty")
	}

	return owner, repo, nil
}
