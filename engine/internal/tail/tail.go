// Package tail provides a bounded line buffer for capturing the end of
// a subprocess output stream.
package tail

import (
	"sync"
	"unicode/utf8"
)

// MaxLineLen caps stored lines to prevent unbounded retention.
const MaxLineLen = 4096

// Ring keeps the last N lines written to it. Safe for concurrent use:
// the stderr pump writes while error paths read.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewRing creates a ring holding at most n lines. n must be positive.
func NewRing(n int) *Ring {
	return &Ring{lines: make([]string, n)}
}

// Add appends a line, evicting the oldest when full.
func (r *Ring) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = truncateUTF8(line, MaxLineLen)
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// Lines returns the retained lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	if r.full {
		out = append(out, r.lines[r.next:]...)
	}
	out = append(out, r.lines[:r.next]...)
	// Drop empty slots from a ring that never filled.
	trimmed := out[:0]
	for _, l := range out {
		if l != "" {
			trimmed = append(trimmed, l)
		}
	}
	return trimmed
}

// truncateUTF8 caps s at limit bytes, backtracking to a valid UTF-8 boundary.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
