// Package tlog is a thin demonstration sink (spec.md §1 names add-ons as
// out of core scope) that logs every event a Bus delivers through
// charmbracelet/log, the same structured logger cmd/tokenloom's own log.go
// configures for the CLI.
package tlog

import (
	"github.com/charmbracelet/log"

	"github.com/alaa-eddine/tokenloom"
)

// Sink observes every event surviving the pipeline and writes one log line
// per event at the configured level. It implements bus.Observer.
type Sink struct {
	logger *log.Logger
	level  log.Level
}

// New builds a Sink writing through logger (pass nil for log.Default()) at
// level (log.DebugLevel by default is the quietest useful setting for a
// per-event trace).
func New(logger *log.Logger, level log.Level) *Sink {
	if logger == nil {
		logger = log.Default()
	}
	return &Sink{logger: logger, level: level}
}

// Observe implements bus.Observer.
func (s *Sink) Observe(e tokenloom.Event) {
	args := []any{"type", string(e.Type)}
	switch e.Type {
	case tokenloom.EventText, tokenloom.EventCodeFenceChunk:
		args = append(args, "len", len(e.Text))
	case tokenloom.EventTagOpen, tokenloom.EventTagClose:
		args = append(args, "tag", e.TagName)
	case tokenloom.EventCodeFenceStart:
		args = append(args, "fence", string(e.Fence), "lang", e.Lang)
	case tokenloom.EventError:
		args = append(args, "reason", e.Reason, "recoverable", e.Recoverable)
	}
	s.logger.Log(s.level, "tokenloom event", args...)
}
