package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/alaa-eddine/tokenloom"
)

// renderer prints a human-readable trace of the event stream, styling
// structural markers when the output is a terminal — the same
// isatty-gated styling decision glow's main.go makes before invoking its
// Markdown renderer.
type renderer struct {
	out     io.Writer
	styled  bool
	width   int
	tagOpen lipgloss.Style
	fence   lipgloss.Style
	errStyle lipgloss.Style

	totalBytes    uint64
	displayWidth  int
	bufferFlushes int
}

func newRenderer(out io.Writer, width int) *renderer {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) && termenv.EnvColorProfile() != termenv.Ascii
	}
	if width <= 0 {
		width = 80
	}
	return &renderer{
		out:      out,
		styled:   styled,
		width:    width,
		tagOpen:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		fence:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
	}
}

// Observe implements bus.Observer, rendering each event as it arrives.
func (r *renderer) Observe(e tokenloom.Event) {
	switch e.Type {
	case tokenloom.EventText:
		r.totalBytes += uint64(len(e.Text))
		r.displayWidth += runewidth.StringWidth(e.Text)
		fmt.Fprint(r.out, wordwrap.String(e.Text, r.width))
	case tokenloom.EventTagOpen:
		r.printStyled(r.tagOpen, fmt.Sprintf("<%s>", e.TagName))
	case tokenloom.EventTagClose:
		r.printStyled(r.tagOpen, fmt.Sprintf("</%s>", e.TagName))
	case tokenloom.EventCodeFenceStart:
		r.printStyled(r.fence, fmt.Sprintf("%s%s\n", e.Fence, e.Lang))
	case tokenloom.EventCodeFenceChunk:
		r.totalBytes += uint64(len(e.Text))
		fmt.Fprint(r.out, e.Text)
	case tokenloom.EventCodeFenceEnd:
		r.printStyled(r.fence, string(tokenloom.FenceBacktick)+"\n")
	case tokenloom.EventError:
		r.printStyled(r.errStyle, fmt.Sprintf("[error: %s]", e.Reason))
	case tokenloom.EventBufferReleased:
		r.bufferFlushes++
	case tokenloom.EventEnd:
		fmt.Fprintf(r.out, "\n-- %s streamed, %d columns of display width, %d buffer releases --\n",
			humanize.Bytes(r.totalBytes), r.displayWidth, r.bufferFlushes)
	}
}

func (r *renderer) printStyled(style lipgloss.Style, s string) {
	if r.styled {
		fmt.Fprint(r.out, style.Render(s))
		return
	}
	fmt.Fprint(r.out, s)
}
