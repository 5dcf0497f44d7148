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

package device

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"
)

// Backend is an accelerator family together with its availability probe.
type Backend struct {
	// Name is the device family reported in references, e.g. "cuda".
	Name string

	// Probe reports whether the family is usable on this host.
	Probe func() bool
}

// Available runs the probe. A backend without a probe is never available.
func (b Backend) Available() bool {
	return b.Probe != nil && b.Probe()
}

// CUDA probes for NVIDIA GPUs.
var CUDA = Backend{Name: TypeCUDA, Probe: probeCUDA}

// MPS probes for the Apple unified memory accelerator.
var MPS = Backend{Name: TypeMPS, Probe: probeMPS}

// Alternatives is the ordered list of other accelerator families tried after
// CUDA and MPS.
var Alternatives = []Backend{
	{Name: TypeXPU, Probe: probeXPU},
	{Name: TypeNPU, Probe: probeNPU},
}

func probeCUDA() bool {
	// An empty or negative visibility mask hides every GPU from the process.
	if visible, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		visible = strings.TrimSpace(visible)
		if visible == "" || strings.HasPrefix(visible, "-1") {
			logrus.Debugf("device: cuda hidden by CUDA_VISIBLE_DEVICES=%q", visible)
			return false
		}
	}

	return readable("/dev/nvidia0") || onPath("nvidia-smi")
}

func probeMPS() bool {
	if runtime.GOOS != "darwin" {
		return false
	}

	// Ask the kernel rather than GOARCH so translated amd64 binaries still
	// see the arm64 host.
	arch, err := host.KernelArch()
	if err != nil {
		logrus.Debugf("device: failed to read kernel arch: %v", err)
		return runtime.GOARCH == "arm64"
	}

	return arch == "arm64"
}

func probeXPU() bool {
	if onPath("xpu-smi") || onPath("sycl-ls") {
		return true
	}

	nodes, err := filepath.Glob("/sys/class/drm/renderD*/device/vendor")
	if err != nil {
		return false
	}

	for _, node := range nodes {
		vendor, err := os.ReadFile(node)
		if err != nil {
			continue
		}

		// 0x8086 is the Intel PCI vendor id.
		if strings.TrimSpace(string(vendor)) == "0x8086" {
			return true
		}
	}

	return false
}

func probeNPU() bool {
	return readable("/dev/davinci0") || onPath("npu-smi")
}

func onPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
