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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/pkg/modelprovider"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

// providersCmd represents the modres command for providers.
var providersCmd = &cobra.Command{
	Use:                "providers [flags] [name...]",
	Short:              "Providers lists the checkpoint providers in lookup order and whether their credentials are present.",
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProviders(args)
	},
}

// init initializes providers command.
func init() {
	flags := providersCmd.Flags()

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind providers flags to viper: %w", err))
	}
}

type providerStatus struct {
	Name  string `json:"name" yaml:"name"`
	Auth  bool   `json:"auth" yaml:"auth"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// runProviders runs the providers modres.
func runProviders(names []string) error {
	statuses, err := providerStatuses(modelprovider.NewRegistry(transfer.Options{}), names)
	if err != nil {
		return err
	}

	return render(statuses, func(w io.Writer) {
		fmt.Fprintln(w, "PROVIDER\tAUTH\tDETAIL")
		for _, s := range statuses {
			fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Auth, s.Error)
		}
	})
}

// providerStatuses checks the credentials of the named providers, or of every
// provider when names is empty.
func providerStatuses(registry *modelprovider.Registry, names []string) ([]providerStatus, error) {
	if len(names) == 0 {
		names = registry.ListProviders()
	}

	statuses := make([]providerStatus, 0, len(names))
	for _, name := range names {
		p, err := registry.GetProviderByName(name)
		if err != nil {
			return nil, err
		}

		status := providerStatus{Name: name, Auth: true}
		if err := p.CheckAuth(); err != nil {
			status.Auth, status.Error = false, err.Error()
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
