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
	"slices"
	"strconv"

	"github.com/databricks/databricks-sdk-go/client"
	"github.com/databricks/databricks-sdk-go/config"
	"github.com/databricks/databricks-sdk-go/service/ml"
	"github.com/sirupsen/logrus"
)

// Registry is the subset of the model registry API used to resolve a model
// version to its artifact location. *ml.ModelRegistryAPI implements it.
type Registry interface {
	GetLatestVersionsAll(ctx context.Context, request ml.GetLatestVersionsRequest) ([]ml.ModelVersion, error)
	GetModelVersionDownloadUri(ctx context.Context, request ml.GetModelVersionDownloadUriRequest) (*ml.GetModelVersionDownloadUriResponse, error)
}

// NewRegistry creates a registry client from the DATABRICKS_* environment.
func NewRegistry() (Registry, error) {
	c, err := client.New(&config.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}

	return ml.NewModelRegistry(c), nil
}

// ArtifactURI resolves the artifact location of a model version. An empty
// version selects the newest one.
func ArtifactURI(ctx context.Context, registry Registry, name, version string) (string, error) {
	if registry == nil {
		return "", errors.New("mlflow client is not initialized: registry is nil")
	}

	versions, err := registry.GetLatestVersionsAll(ctx, ml.GetLatestVersionsRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to get versions for model %s: %w", name, err)
	}

	if len(versions) == 0 {
		return "", fmt.Errorf("model %s has no versions", name)
	}

	available := make([]string, 0, len(versions))
	for _, v := range versions {
		available = append(available, v.Version)
	}
	logrus.Debugf("mlflow: found versions %v for model %s", available, name)

	if version == "" {
		version = latest(available)
	} else if !slices.Contains(available, version) {
		return "", fmt.Errorf("model %s version %s not found, available versions %v", name, version, available)
	}

	resp, err := registry.GetModelVersionDownloadUri(ctx, ml.GetModelVersionDownloadUriRequest{
		Name:    name,
		Version: version,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get download uri for %s/%s: %w", name, version, err)
	}

	if resp == nil || resp.ArtifactUri == "" {
		return "", fmt.Errorf("model %s version %s has no artifact uri", name, version)
	}

	return resp.ArtifactUri, nil
}

// latest picks the highest numeric version, falling back to the first one.
func latest(versions []string) string {
	best, bestN := versions[0], -1
	for _, v := range versions {
		if n, err := strconv.Atoi(v); err == nil && n > bestN {
			best, bestN = v, n
		}
	}

	return best
}
