// Package collector is a thin demonstration sink that accumulates a
// parser's plain-text and code-fence output into a single transcript,
// optionally copying it to the system clipboard when the stream flushes —
// the same clipboard glow wires into its pager's copy keybinding, here
// triggered by the `flush` event instead of a keypress.
package collector

import (
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/alaa-eddine/tokenloom"
)

// Sink collects Text from every `text` and `code-fence-chunk` event it
// observes. It implements bus.Observer.
type Sink struct {
	// CopyOnFlush, if true, writes the transcript so far to the system
	// clipboard every time a `flush` event is observed.
	CopyOnFlush bool

	mu         sync.Mutex
	b          strings.Builder
	copyErr    error
	flushCount int
}

// New builds an empty Sink.
func New(copyOnFlush bool) *Sink {
	return &Sink{CopyOnFlush: copyOnFlush}
}

// Observe implements bus.Observer.
func (s *Sink) Observe(e tokenloom.Event) {
	switch e.Type {
	case tokenloom.EventText, tokenloom.EventCodeFenceChunk:
		s.mu.Lock()
		s.b.WriteString(e.Text)
		s.mu.Unlock()
	case tokenloom.EventFlush:
		s.mu.Lock()
		s.flushCount++
		if s.CopyOnFlush {
			s.copyErr = clipboard.WriteAll(s.b.String())
		}
		s.mu.Unlock()
	}
}

// Transcript returns everything collected so far.
func (s *Sink) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// LastCopyError returns the error (if any) from the most recent
// clipboard.WriteAll call triggered by CopyOnFlush.
func (s *Sink) LastCopyError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyErr
}

// FlushCount reports how many `flush` events have been observed, mostly
// useful in tests.
func (s *Sink) FlushCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushCount
}
