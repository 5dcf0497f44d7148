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
	"os"
	"path/filepath"
	"testing"

	"github.com/databricks/databricks-sdk-go/service/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

type fakeRegistry struct {
	versions []string
	uri      string
	err      error

	requested string
}

func (f *fakeRegistry) GetLatestVersionsAll(_ context.Context, request ml.GetLatestVersionsRequest) ([]ml.ModelVersion, error) {
	if f.err != nil {
		return nil, f.err
	}

	out := make([]ml.ModelVersion, 0, len(f.versions))
	for _, v := range f.versions {
		out = append(out, ml.ModelVersion{Name: request.Name, Version: v})
	}

	return out, nil
}

func (f *fakeRegistry) GetModelVersionDownloadUri(_ context.Context, request ml.GetModelVersionDownloadUriRequest) (*ml.GetModelVersionDownloadUriResponse, error) {
	f.requested = request.Version
	return &ml.GetModelVersionDownloadUriResponse{ArtifactUri: f.uri}, nil
}

type fakeStore struct {
	uri string
}

func (f *fakeStore) Fetch(_ context.Context, modelURL, destDir string, _ []string) (string, error) {
	f.uri = modelURL
	return destDir, nil
}

func newTestProvider(registry Registry) *Provider {
	p := New(transfer.Options{})
	p.newRegistry = func() (Registry, error) { return registry, nil }
	return p
}

func TestParseModelURL(t *testing.T) {
	tests := []struct {
		modelURL    string
		wantName    string
		wantVersion string
		wantErr     bool
	}{
		{modelURL: "models:/classifier/3", wantName: "classifier", wantVersion: "3"},
		{modelURL: "models://classifier/3", wantName: "classifier", wantVersion: "3"},
		{modelURL: "models:/classifier", wantName: "classifier"},
		{modelURL: "classifier/3", wantName: "classifier", wantVersion: "3"},
		{modelURL: "classifier", wantName: "classifier"},
		{modelURL: "", wantErr: true},
		{modelURL: "http://my-model/1", wantErr: true},
		{modelURL: "models:/a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.modelURL, func(t *testing.T) {
			name, version, err := parseModelURL(tt.modelURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestArtifactURI(t *testing.T) {
	ctx := context.Background()

	_, err := ArtifactURI(ctx, nil, "m", "1")
	assert.Error(t, err)

	registry := &fakeRegistry{versions: []string{"2", "10", "3"}, uri: "s3://bucket/m/10"}
	uri, err := ArtifactURI(ctx, registry, "m", "")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/m/10", uri)
	assert.Equal(t, "10", registry.requested)

	_, err = ArtifactURI(ctx, registry, "m", "7")
	assert.ErrorContains(t, err, "version 7 not found")

	_, err = ArtifactURI(ctx, &fakeRegistry{}, "m", "")
	assert.ErrorContains(t, err, "no versions")

	_, err = ArtifactURI(ctx, &fakeRegistry{err: errors.New("unauthorized")}, "m", "")
	assert.ErrorContains(t, err, "unauthorized")
}

func TestProvider_Fetch(t *testing.T) {
	store := &fakeStore{}
	p := newTestProvider(&fakeRegistry{versions: []string{"1"}, uri: "s3://bucket/artifacts/1"})
	p.stores["s3"] = store

	dest := t.TempDir()
	dir, err := p.Fetch(context.Background(), "models:/classifier/1", dest, []string{"config.json"})
	require.NoError(t, err)
	assert.Equal(t, dest, dir)
	assert.Equal(t, "s3://bucket/artifacts/1", store.uri)

	p = newTestProvider(&fakeRegistry{versions: []string{"1"}, uri: "hdfs://cluster/artifacts/1"})
	_, err = p.Fetch(context.Background(), "models:/classifier/1", dest, nil)
	assert.ErrorContains(t, err, "unsupported artifact storage type")
}

func TestProvider_FetchLocalArtifacts(t *testing.T) {
	artifacts := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(artifacts, "config.json"), []byte("{}"), 0644))

	p := newTestProvider(&fakeRegistry{versions: []string{"1"}, uri: "file://" + artifacts})
	dir, err := p.Fetch(context.Background(), "models:/classifier", t.TempDir(), []string{"config.json"})
	require.NoError(t, err)
	assert.Equal(t, artifacts, dir)
}

func TestProvider_RegistryError(t *testing.T) {
	p := New(transfer.Options{})
	p.newRegistry = func() (Registry, error) { return nil, errors.New("no host") }

	_, err := p.Fetch(context.Background(), "models:/classifier/1", t.TempDir(), nil)
	assert.ErrorContains(t, err, "no host")
}

func TestProvider_SupportsURL(t *testing.T) {
	p := New(transfer.Options{})

	assert.Equal(t, "mlflow", p.Name())
	assert.True(t, p.SupportsURL("models:/classifier/1"))
	assert.False(t, p.SupportsURL("models/classifier"))
	assert.False(t, p.SupportsURL("s3://bucket/models"))
}

func TestCheckMlflowAuth(t *testing.T) {
	t.Setenv("DATABRICKS_HOST", "")
	t.Setenv("DATABRICKS_USERNAME", "")
	t.Setenv("DATABRICKS_PASSWORD", "")
	t.Setenv("MLFLOW_TRACKING_URI", "")
	t.Setenv("MLFLOW_TRACKING_USERNAME", "")
	t.Setenv("MLFLOW_TRACKING_PASSWORD", "")

	assert.Error(t, checkMlflowAuth())

	t.Setenv("MLFLOW_TRACKING_URI", "https://mlflow.example.com")
	t.Setenv("MLFLOW_TRACKING_USERNAME", "user")
	t.Setenv("MLFLOW_TRACKING_PASSWORD", "pass")
	require.NoError(t, checkMlflowAuth())
	assert.Equal(t, "https://mlflow.example.com", os.Getenv("DATABRICKS_HOST"))
	assert.Equal(t, "user", os.Getenv("DATABRICKS_USERNAME"))

	t.Setenv("MLFLOW_TRACKING_URI", "")
	assert.NoError(t, checkMlflowAuth())
}
