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

package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/uni-industries/txtai-fork/pkg/version.GitVersion=...".
var (
	GitVersion = "v0.0.0-dev"
	GitCommit  = "unknown"
	BuildTime  = "unknown"
	Platform   = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info is the build metadata of the binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Platform  string `json:"platform" yaml:"platform"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the build metadata.
func Get() Info {
	return Info{
		Version:   GitVersion,
		Commit:    GitCommit,
		Platform:  Platform,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
