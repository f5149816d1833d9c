// Package highlight is a thin demonstration sink that syntax-highlights
// code-fence-chunk text with chroma/v2, the same highlighter glamour wraps
// for full Markdown rendering — used here directly against fence events
// instead of through glamour's Markdown pipeline, which is out of scope
// (spec.md Non-goals: no component parses or renders full Markdown).
//
// Highlighting runs per chunk, not per fence: a fence's content may arrive
// split across many code-fence-chunk events, and each is tokenized
// independently. Lexers that need multi-line context (e.g. doc-comment
// detection spanning a chunk boundary) will occasionally mis-highlight a
// boundary; that tradeoff is acceptable for a demonstration sink.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/alaa-eddine/tokenloom"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// Sink rewrites code-fence-chunk event text to ANSI-highlighted text keyed
// by the fence's lang, and attaches a styled header label to
// code-fence-start events. It implements bus.Transformer.
type Sink struct {
	StyleName     string // chroma style name, e.g. "monokai"; "" uses the default
	FormatterName string // chroma formatter name, e.g. "terminal16m"; "" uses the default
}

// New builds a Sink with the given chroma style/formatter names (pass ""
// for both to use sensible defaults).
func New(styleName, formatterName string) *Sink {
	return &Sink{StyleName: styleName, FormatterName: formatterName}
}

// Transform implements bus.Transformer.
func (s *Sink) Transform(e tokenloom.Event) ([]tokenloom.Event, error) {
	switch e.Type {
	case tokenloom.EventCodeFenceStart:
		e.SetMeta("styled_header", headerStyle.Render(fenceHeaderText(e)))
		return []tokenloom.Event{e}, nil
	case tokenloom.EventCodeFenceChunk:
		lang := ""
		if e.In != nil && e.In.InCodeFence != nil {
			lang = e.In.InCodeFence.Lang
		}
		highlighted, err := s.highlight(lang, e.Text)
		if err != nil {
			return nil, err
		}
		e.Text = highlighted
		return []tokenloom.Event{e}, nil
	default:
		return []tokenloom.Event{e}, nil
	}
}

func fenceHeaderText(e tokenloom.Event) string {
	if e.Lang != "" {
		return string(e.Fence) + e.Lang
	}
	return string(e.Fence)
}

// highlight tokenizes code with the lexer for lang (falling back to a
// generic analyzer when lang is empty or unrecognized) and renders it
// through the configured chroma style/formatter.
func (s *Sink) highlight(lang, code string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(s.StyleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get(s.FormatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}
