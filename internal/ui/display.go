package ui

import (
	"fmt"
	"io"
	"sync"
)

// ScanStatus is a live, single-line status indicator for a running
// scan, written to w. Unlike a byte-count progress bar, a crawl has no
// known total ahead of time, so it reports running counts rather than
// a percentage. Callers writing findings or a JSON/YAML report to
// stdout should point w at stderr so the two streams don't interleave.
type ScanStatus struct {
	Prefix  string
	w       io.Writer
	pages   int64
	scripts int64
	mu      sync.Mutex
}

func NewScanStatus(w io.Writer, prefix string) *ScanStatus {
	return &ScanStatus{w: w, Prefix: prefix}
}

func (s *ScanStatus) SetPages(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = n
	s.render()
}

func (s *ScanStatus) SetScripts(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = n
	s.render()
}

func (s *ScanStatus) render() {
	fmt.Fprintf(s.w, "\r%s %s pages=%d%s %s scripts=%d%s   ",
		Blue+s.Prefix+Reset,
		Cyan, s.pages, Reset,
		Cyan, s.scripts, Reset,
	)
}

// Done finishes the status line with a trailing newline.
func (s *ScanStatus) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w)
}
