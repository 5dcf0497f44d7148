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

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uni-industries/txtai-fork/pkg/config"
	"github.com/uni-industries/txtai-fork/pkg/device"
	"github.com/uni-industries/txtai-fork/pkg/models"
)

var deviceConfig = config.NewDevice()

// deviceCmd represents the modres command for device.
var deviceCmd = &cobra.Command{
	Use:                "device [flags]",
	Short:              "Device resolves a device request into a device id, reference and handle for this host.",
	Args:               cobra.NoArgs,
	DisableAutoGenTag:  true,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := deviceConfig.Validate(); err != nil {
			return err
		}

		return runDevice()
	},
}

// init initializes device command.
func init() {
	flags := deviceCmd.Flags()
	flags.StringVar(&deviceConfig.GPU, "gpu", deviceConfig.GPU, "specify the device request: empty, true, false, an ordinal or a reference such as cuda:1")
	flags.BoolVar(&deviceConfig.Describe, "describe", deviceConfig.Describe, "probe every accelerator backend on this host")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("bind device flags to viper: %w", err))
	}
}

type deviceResult struct {
	Request     string       `json:"request" yaml:"request"`
	ID          string       `json:"id" yaml:"id"`
	Reference   string       `json:"reference" yaml:"reference"`
	Accelerator bool         `json:"accelerator" yaml:"accelerator"`
	Alternative string       `json:"alternative,omitempty" yaml:"alternative,omitempty"`
	Host        *device.Host `json:"host,omitempty" yaml:"host,omitempty"`
}

// runDevice runs the device modres.
func runDevice() error {
	request := deviceRequest(deviceConfig.GPU)
	id, err := models.DeviceID(request)
	if err != nil {
		return err
	}

	handle, err := models.Device(id)
	if err != nil {
		return err
	}

	result := deviceResult{
		Request:     deviceConfig.GPU,
		ID:          id.String(),
		Reference:   handle.String(),
		Accelerator: models.HasAccelerator(),
		Alternative: models.FindDevice(),
	}

	if deviceConfig.Describe {
		host := device.Default().Describe()
		result.Host = &host
	}

	return render(result, func(w io.Writer) {
		fmt.Fprintf(w, "REQUEST:\t%q\n", result.Request)
		fmt.Fprintf(w, "ID:\t%s\n", result.ID)
		fmt.Fprintf(w, "REFERENCE:\t%s\n", result.Reference)
		fmt.Fprintf(w, "ACCELERATOR:\t%t\n", result.Accelerator)

		if result.Host != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "BACKEND\tAVAILABLE")
			for _, b := range result.Host.Backends {
				fmt.Fprintf(w, "%s\t%t\n", b.Name, b.Available)
			}
			fmt.Fprintf(w, "MEMORY:\t%s\n", humanize.IBytes(result.Host.TotalMemory))
		}
	})
}

// deviceRequest turns the flag value into a request. References such as
// "cuda:1" are resolved as handles so they pass through unchanged.
func deviceRequest(value string) device.Request {
	if h, err := device.ParseHandle(value); err == nil {
		return device.FromHandle(h)
	}

	return device.ParseRequest(value)
}
