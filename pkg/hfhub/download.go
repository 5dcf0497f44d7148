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

package hfhub

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/uni-industries/txtai-fork/internal/pb"
)

const (
	// HuggingFaceBaseURL is the default hub endpoint.
	HuggingFaceBaseURL = "https://huggingface.co"

	// DefaultRevision is the branch files are resolved against.
	DefaultRevision = "main"
)

// ErrFileNotFound is returned when the hub has no such file in the repo. It
// matches fs.ErrNotExist.
var ErrFileNotFound = fmt.Errorf("file not found on hub: %w", fs.ErrNotExist)

// Repo identifies a model repository on the hub.
type Repo struct {
	// Owner is empty for legacy top level models such as "gpt2".
	Owner    string
	Name     string
	Revision string
}

// ID returns the repo id as used in hub URLs.
func (r Repo) ID() string {
	if r.Owner == "" {
		return r.Name
	}

	return r.Owner + "/" + r.Name
}

// ParseModelURL parses a hub model URL or id. Ids take the forms "name",
// "owner/name" and "owner/name@revision"; URLs take the form
// https://huggingface.co/owner/name with optional /tree/<revision>.
func ParseModelURL(modelURL string) (Repo, error) {
	modelURL = strings.TrimSuffix(strings.TrimSpace(modelURL), "/")
	modelURL = strings.TrimPrefix(modelURL, "hf://")

	repo := Repo{Revision: DefaultRevision}

	var parts []string
	if strings.HasPrefix(modelURL, "http://") || strings.HasPrefix(modelURL, "https://") {
		u, err := url.Parse(modelURL)
		if err != nil {
			return Repo{}, fmt.Errorf("invalid URL: %w", err)
		}

		parts = strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
		if len(parts) < 2 || parts[0] == "" {
			return Repo{}, fmt.Errorf("invalid Hugging Face URL format, expected https://huggingface.co/owner/repo")
		}

		if len(parts) >= 4 && parts[2] == "tree" {
			rev, err := url.PathUnescape(parts[3])
			if err != nil {
				return Repo{}, fmt.Errorf("invalid revision: %w", err)
			}
			repo.Revision = rev
		}
		parts = parts[:2]
	} else {
		if id, rev, ok := strings.Cut(modelURL, "@"); ok {
			if rev == "" {
				return Repo{}, fmt.Errorf("invalid model identifier, empty revision")
			}
			modelURL, repo.Revision = id, rev
		}

		parts = strings.Split(modelURL, "/")
		if len(parts) > 2 {
			return Repo{}, fmt.Errorf("invalid model identifier, expected format: owner/repo")
		}
	}

	if len(parts) == 2 {
		repo.Owner, repo.Name = parts[0], parts[1]
		if repo.Owner == "" || repo.Name == "" {
			return Repo{}, fmt.Errorf("owner and repository name cannot be empty")
		}
	} else {
		repo.Name = parts[0]
		if repo.Name == "" {
			return Repo{}, fmt.Errorf("invalid model identifier, expected format: owner/repo")
		}
	}

	return repo, nil
}

// Endpoint returns the hub endpoint, honoring HF_ENDPOINT.
func Endpoint() string {
	if ep := os.Getenv("HF_ENDPOINT"); ep != "" {
		return strings.TrimSuffix(ep, "/")
	}

	return HuggingFaceBaseURL
}

// GetToken returns the hub token from HF_TOKEN or the token file. An empty
// token without error means anonymous access.
func GetToken() (string, error) {
	if token := os.Getenv("HF_TOKEN"); token != "" {
		return token, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	for _, tokenPath := range []string{
		filepath.Join(homeDir, ".cache", "huggingface", "token"),
		filepath.Join(homeDir, ".huggingface", "token"),
	} {
		data, err := os.ReadFile(tokenPath)
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
	}

	return "", nil
}

// Client downloads files from a hub endpoint.
type Client struct {
	// BaseURL is the hub endpoint.
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	HTTPClient *http.Client

	// Progress reports transfers when set.
	Progress *pb.ProgressBar
}

// NewClient creates a client for the configured endpoint and token.
func NewClient() (*Client, error) {
	token, err := GetToken()
	if err != nil {
		return nil, err
	}

	return &Client{BaseURL: Endpoint(), Token: token, HTTPClient: http.DefaultClient}, nil
}

// FileURL returns the resolve URL of filename in repo.
func (c *Client) FileURL(repo Repo, filename string) string {
	rev := repo.Revision
	if rev == "" {
		rev = DefaultRevision
	}

	return fmt.Sprintf("%s/%s/resolve/%s/%s", c.BaseURL, repo.ID(), url.PathEscape(rev), filename)
}

// DownloadFile fetches filename from repo into destPath.
func (c *Client) DownloadFile(ctx context.Context, repo Repo, filename, destPath string) error {
	return Download(ctx, c.HTTPClient, c.FileURL(repo, filename), c.Token, destPath, c.Progress)
}

// Download fetches fileURL into destPath, writing through a temporary file so
// a failed transfer never leaves a partial file behind. A 404 is reported as
// ErrFileNotFound.
func Download(ctx context.Context, client *http.Client, fileURL, token, destPath string, progress *pb.ProgressBar) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrFileNotFound, fileURL)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("failed to download file, status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(tmp.Name())

	name := filepath.Base(destPath)
	var body io.Reader = resp.Body
	if progress != nil {
		body = progress.Add(pb.NormalizePrompt("Fetching"), name, resp.ContentLength, body)
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		if progress != nil {
			progress.Abort(name, err)
		}
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	if progress != nil {
		progress.Complete(name, fmt.Sprintf("%s %s", pb.NormalizePrompt("Fetched"), name))
	}

	return nil
}
