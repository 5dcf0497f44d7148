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

import "context"

// Provider resolves model references from one source (a hub, a registry, an
// object store or the local disk) and fetches files of the model.
type Provider interface {
	// Name returns the provider name, e.g. "huggingface".
	Name() string

	// SupportsURL reports whether the provider recognizes the reference.
	SupportsURL(url string) bool

	// Fetch places the requested files of the model under destDir and
	// returns the directory holding them, which may differ from destDir for
	// models that already live on disk. Files the model does not have are
	// skipped.
	Fetch(ctx context.Context, modelURL, destDir string, files []string) (string, error)

	// CheckAuth verifies that credentials for the provider are present.
	CheckAuth() error
}
