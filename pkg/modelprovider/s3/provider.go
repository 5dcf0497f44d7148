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

package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

// PartSize is the ranged GET size used for large objects.
const PartSize int64 = 10 * 1024 * 1024

// Downloader fetches one object. *manager.Downloader implements it.
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// Provider fetches model files stored under an s3://bucket/prefix location.
type Provider struct {
	opts transfer.Options

	// newDownloader is replaced in tests.
	newDownloader func(ctx context.Context) (Downloader, error)
}

// New creates a new S3 provider instance.
func New(opts transfer.Options) *Provider {
	return &Provider{opts: opts, newDownloader: newDownloader}
}

// Name returns the name of this provider.
func (p *Provider) Name() string {
	return "s3"
}

// SupportsURL reports whether url is an s3:// location.
func (p *Provider) SupportsURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), "s3://")
}

// Fetch downloads prefix/file for every requested file into destDir.
func (p *Provider) Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error) {
	bucket, prefix, err := ParseURI(modelURL)
	if err != nil {
		return "", err
	}

	d, err := p.newDownloader(ctx)
	if err != nil {
		return "", err
	}

	logrus.Infof("s3: fetching %d files from bucket %s, prefix %q", len(files), bucket, prefix)

	if _, err := transfer.Files(ctx, destDir, files, p.opts, func(ctx context.Context, file, destPath string) error {
		return download(ctx, d, bucket, path.Join(prefix, file), destPath)
	}); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", modelURL, err)
	}

	return destDir, nil
}

// CheckAuth verifies that AWS credentials are configured through the
// environment or the shared credentials file.
func (p *Provider) CheckAuth() error {
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" || os.Getenv("AWS_PROFILE") != "" || os.Getenv("AWS_WEB_IDENTITY_TOKEN_FILE") != "" {
		return nil
	}

	credentials := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credentials == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		credentials = filepath.Join(homeDir, ".aws", "credentials")
	}

	if _, err := os.Stat(credentials); err == nil {
		return nil
	}

	return fmt.Errorf("no AWS credentials found. Please set AWS_ACCESS_KEY_ID or AWS_PROFILE, or run: aws configure")
}

// ParseURI splits s3://bucket/prefix into its bucket and key prefix.
func ParseURI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q, expected s3://bucket/prefix", uri)
	}

	return u.Host, strings.Trim(u.Path, "/"), nil
}

func newDownloader(ctx context.Context) (Downloader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config, check the environment or profile: %w", err)
	}

	logrus.Debugf("s3: region %s, endpoint %s", cfg.Region, aws.ToString(cfg.BaseEndpoint))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = os.Getenv("AWS_S3_USE_PATH_STYLE") == "true"
	})

	return manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = PartSize
	}), nil
}

// download writes the object to destPath through a temporary file.
func download(ctx context.Context, d Downloader, bucket, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := d.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("object s3://%s/%s: %w", bucket, key, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	logrus.Debugf("s3: downloaded %s to %s (%d bytes)", key, destPath, n)
	return os.Rename(tmp.Name(), destPath)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	return false
}
