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

package modelprovider

import (
	"fmt"
	"strings"

	"github.com/uni-industries/txtai-fork/pkg/modelprovider/huggingface"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/local"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/mlflow"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/modelscope"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/s3"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

// Registry selects the provider for a model reference.
type Registry struct {
	providers []Provider

	// fallback handles bare identifiers no provider claims.
	fallback Provider

	// pinned serves every reference when set.
	pinned Provider
}

// NewRegistry creates a registry with every built-in provider. Local
// directories are checked first and bare identifiers fall back to Hugging
// Face.
func NewRegistry(opts transfer.Options) *Registry {
	hf := huggingface.New(opts)

	return NewRegistryWith(hf,
		local.New(),
		mlflow.New(opts),
		s3.New(opts),
		modelscope.New(opts),
		hf,
	)
}

// NewRegistryWith creates a registry over providers, tried in order.
func NewRegistryWith(fallback Provider, providers ...Provider) *Registry {
	return &Registry{providers: providers, fallback: fallback}
}

// GetProvider returns the first provider supporting modelURL. A reference
// with no scheme that no provider claims goes to the fallback.
func (r *Registry) GetProvider(modelURL string) (Provider, error) {
	if r.pinned != nil {
		return r.pinned, nil
	}

	for _, p := range r.providers {
		if p.SupportsURL(modelURL) {
			return p, nil
		}
	}

	ref := strings.TrimSpace(modelURL)
	if r.fallback != nil && ref != "" && !strings.Contains(ref, "://") {
		return r.fallback, nil
	}

	return nil, fmt.Errorf("no provider found for URL: %s", modelURL)
}

// GetProviderByName returns the provider with the given name.
func (r *Registry) GetProviderByName(name string) (Provider, error) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}

	return nil, fmt.Errorf("provider not found: %s", name)
}

// ListProviders returns the provider names in lookup order.
func (r *Registry) ListProviders() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}

	return names
}

// Pin returns a registry serving every reference with the named provider.
func (r *Registry) Pin(name string) (*Registry, error) {
	p, err := r.GetProviderByName(name)
	if err != nil {
		return nil, err
	}

	return &Registry{providers: []Provider{p}, pinned: p}, nil
}
