// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batchscan

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress prints a single self-overwriting status line while a batch runs.
// The clock starts when the Progress is created.
type Progress struct {
	w     io.Writer
	total int
	every int
	now   func() time.Time

	mu      sync.Mutex
	start   time.Time
	checked int
	found   int
	failed  int
	printed int
	done    bool
}

// NewProgress reports on w after every `every` results, and once more on Done.
func NewProgress(w io.Writer, total, every int) *Progress {
	return newProgress(w, total, every, time.Now)
}

func newProgress(w io.Writer, total, every int, now func() time.Time) *Progress {
	return &Progress{
		w:     w,
		total: total,
		every: max(every, 1),
		now:   now,
		start: now(),
	}
}

// Add counts one finished page check.
func (p *Progress) Add(result Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	p.checked++
	switch {
	case result.Err != nil:
		p.failed++
	case result.Found():
		p.found++
	}

	if p.checked-p.printed >= p.every {
		p.print()
	}
}

// Done prints the final line. Later calls to Add and Done are ignored.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	p.done = true
	p.print()
	fmt.Fprintln(p.w)
}

// print must be called with p.mu held.
func (p *Progress) print() {
	p.printed = p.checked

	percent := 100.0
	if p.total > 0 {
		percent = float64(p.checked) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := p.now().Sub(p.start).Seconds(); secs > 0 {
		rate = float64(p.checked) / secs
	}

	fmt.Fprintf(p.w, "\rChecked: %d/%d (%.1f%%) - %d with matches, %d failed - %.1f pages/s",
		p.checked, p.total, percent, p.found, p.failed, rate)
}
