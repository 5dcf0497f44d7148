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

package mlflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/pkg/modelprovider/local"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/s3"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

const scheme = "models:"

// artifactStore fetches files from the location a model version points to.
type artifactStore interface {
	Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error)
}

// Provider resolves models:/name/version references through an MLflow
// compatible model registry.
type Provider struct {
	stores map[string]artifactStore

	newRegistry func() (Registry, error)

	once     sync.Once
	registry Registry
	err      error
}

// New creates a new MLflow provider instance.
func New(opts transfer.Options) *Provider {
	return &Provider{
		stores: map[string]artifactStore{
			"s3":   s3.New(opts),
			"file": local.New(),
		},
		newRegistry: NewRegistry,
	}
}

// Name returns the name of this provider.
func (p *Provider) Name() string {
	return "mlflow"
}

// SupportsURL reports whether url is a model registry reference.
func (p *Provider) SupportsURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), scheme)
}

// Fetch resolves the model version and fetches the files from its artifact
// store.
func (p *Provider) Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error) {
	name, version, err := parseModelURL(modelURL)
	if err != nil {
		return "", err
	}

	registry, err := p.client()
	if err != nil {
		return "", err
	}

	uri, err := ArtifactURI(ctx, registry, name, version)
	if err != nil {
		return "", err
	}
	logrus.Infof("mlflow: fetching %s from %s", modelURL, uri)

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse artifact uri %s: %w", uri, err)
	}

	store, ok := p.stores[parsed.Scheme]
	if !ok {
		return "", fmt.Errorf("unsupported artifact storage type: %s", parsed.Scheme)
	}

	return store.Fetch(ctx, uri, destDir, files)
}

// CheckAuth verifies that registry credentials are configured.
func (p *Provider) CheckAuth() error {
	return checkMlflowAuth()
}

func (p *Provider) client() (Registry, error) {
	p.once.Do(func() {
		p.registry, p.err = p.newRegistry()
	})

	return p.registry, p.err
}

// checkMlflowAuth accepts DATABRICKS_HOST, or maps the MLFLOW_TRACKING_*
// variables onto the DATABRICKS_* ones the registry client reads.
func checkMlflowAuth() error {
	if os.Getenv("DATABRICKS_HOST") != "" {
		return nil
	}

	host := os.Getenv("MLFLOW_TRACKING_URI")
	user := os.Getenv("MLFLOW_TRACKING_USERNAME")
	pass := os.Getenv("MLFLOW_TRACKING_PASSWORD")
	if host == "" || user == "" || pass == "" {
		logrus.Warn("mlflow: set DATABRICKS_HOST, DATABRICKS_USERNAME and DATABRICKS_PASSWORD, or the MLFLOW_TRACKING_* equivalents")
		return errors.New("please set MLFLOW tracking environment variables")
	}

	for key, value := range map[string]string{
		"DATABRICKS_HOST":     host,
		"DATABRICKS_USERNAME": user,
		"DATABRICKS_PASSWORD": pass,
	} {
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

// parseModelURL accepts models:/name/version, models://name/version,
// name/version and a bare name. An empty version means the latest one.
func parseModelURL(modelURL string) (name, version string, err error) {
	modelURL = strings.TrimSpace(modelURL)
	if modelURL == "" {
		return "", "", errors.New("model url value missing")
	}

	ref := strings.Trim(strings.TrimPrefix(modelURL, scheme), "/")
	if strings.Contains(ref, "://") {
		return "", "", fmt.Errorf("model url %s is invalid, expected models:/name/version", modelURL)
	}

	parts := strings.Split(ref, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], "", nil
	case len(parts) == 2 && parts[0] != "":
		return parts[0], parts[1], nil
	default:
		return "", "", fmt.Errorf("model url %s is invalid, valid mask name/version", modelURL)
	}
}
