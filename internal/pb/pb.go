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

package pb

import (
	"fmt"
	"io"
	"sync"

	humanize "github.com/dustin/go-humanize"
	mpbv8 "github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// NormalizePrompt normalizes the prompt string.
func NormalizePrompt(prompt string) string {
	return fmt.Sprintf("%s =>", prompt)
}

// ProgressBar tracks concurrent file transfers.
type ProgressBar struct {
	mu   sync.RWMutex
	mpb  *mpbv8.Progress
	bars map[string]*progressBar
}

type progressBar struct {
	*mpbv8.Bar
	size int64
	msg  string
}

// NewProgressBar creates a progress bar rendering to w. A nil writer disables
// rendering while still tracking transfers.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{
		mpb:  mpbv8.New(mpbv8.WithWidth(60), mpbv8.WithOutput(w)),
		bars: make(map[string]*progressBar),
	}
}

// Add registers a transfer of size bytes and returns reader wrapped to report
// progress. A name that is already tracked returns reader unchanged.
func (p *ProgressBar) Add(prompt, name string, size int64, reader io.Reader) io.Reader {
	p.mu.RLock()
	oldBar := p.bars[name]
	p.mu.RUnlock()

	if oldBar != nil {
		return reader
	}

	total := size
	if total < 0 {
		total = 0
	}

	bar := p.mpb.New(total,
		mpbv8.BarStyle(),
		mpbv8.BarFillerOnComplete("|"),
		mpbv8.PrependDecorators(
			decor.Any(func(s decor.Statistics) string {
				p.mu.RLock()
				defer p.mu.RUnlock()

				if bar, ok := p.bars[name]; ok && bar.msg != "" {
					return bar.msg
				}

				return fmt.Sprintf("%s %s", prompt, name)
			}, decor.WCSyncSpaceR),
		),
		mpbv8.AppendDecorators(
			decor.OnComplete(decor.Counters(decor.SizeB1024(0), "% .2f / % .2f"), humanize.Bytes(uint64(total))),
			decor.OnComplete(decor.Name(" | ", decor.WCSyncWidthR), " | "),
			decor.OnComplete(
				decor.AverageSpeed(decor.SizeB1024(0), "% .2f", decor.WCSyncWidthR), "done",
			),
		),
	)

	p.mu.Lock()
	p.bars[name] = &progressBar{Bar: bar, size: total}
	p.mu.Unlock()

	return bar.ProxyReader(reader)
}

// Complete marks the transfer finished and replaces its prompt with msg.
func (p *ProgressBar) Complete(name string, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bar, ok := p.bars[name]; ok {
		bar.msg = msg
		bar.Bar.SetTotal(bar.size, true)
	}
}

// Abort stops the transfer and shows err in place of its prompt.
func (p *ProgressBar) Abort(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bar, ok := p.bars[name]; ok {
		bar.msg = fmt.Sprintf("%s %s: %v", NormalizePrompt("Failed"), name, err)
		bar.Bar.Abort(false)
	}
}

// Stop waits for every bar to finish rendering.
func (p *ProgressBar) Stop() {
	p.mpb.Shutdown()
}
