package tokenloom

import (
	"strings"

	"github.com/alaa-eddine/tokenloom/internal/boundary"
)

// stepText advances recognition while in ModeText, per spec §4.3. It always
// either consumes at least one buffer byte, transitions mode, or returns
// having made no change — the last case signals "wait for more input" to
// pump's forward-progress check.
func (p *Parser) stepText() {
	buf := p.buffer

	if len(buf) < p.cfg.SpecMinParseLength {
		idx := boundary.NextSpecialIndex(buf)
		if idx < 0 {
			p.textHold += buf
			p.buffer = ""
			return
		}
		if idx == 0 {
			return
		}
		p.textHold += buf[:idx]
		p.buffer = buf[idx:]
		return
	}

	idx := boundary.NextSpecialIndex(buf)
	if idx < 0 {
		// Nothing in the buffer could start a tag or a fence: all of it is
		// safe plain text.
		p.textHold += buf
		p.buffer = ""
		return
	}
	if idx > 0 {
		p.textHold += buf[:idx]
		buf = buf[idx:]
		p.buffer = buf
	}

	if buf[0] == '<' {
		p.stepTextTagCandidate(buf)
		return
	}
	p.stepTextFenceCandidate(buf)
}

// stepTextTagCandidate handles buf starting with '<' (spec §4.3 steps 3-4,
// 6).
func (p *Parser) stepTextTagCandidate(buf string) {
	m, closeFound, ok := boundary.MatchTagOpen(buf)
	if !closeFound {
		// No '>' buffered yet. Keep waiting unless the candidate has grown
		// past the downgrade threshold.
		if len(buf) >= p.cfg.SpecBufferLength {
			p.textHold += buf
			p.buffer = ""
			return
		}
		return
	}
	if !ok {
		// Malformed name even though a '>' exists somewhere in buf: the '<'
		// itself can never start a recognized tag. Degrade one character and
		// let the rest be re-examined on the next pass.
		p.textHold += buf[:1]
		p.buffer = buf[1:]
		return
	}

	if !p.cfg.hasTag(m.Name) {
		p.textHold += buf[:1]
		p.buffer = buf[1:]
		return
	}

	rawAttrs, selfClosing := boundary.IsSelfClosing(m.AttrSource)
	attrs := buildAttrs(rawAttrs)

	p.flushTextHold()
	p.emitEvent(Event{Type: EventTagOpen, TagName: m.Name, Attrs: attrs})

	if selfClosing {
		p.emitEvent(Event{Type: EventTagClose, TagName: m.Name})
		p.buffer = buf[m.End:]
		return
	}

	p.currentTagName = m.Name
	p.currentTagAttrs = attrs
	p.currentTagRaw = buf[:m.End]
	p.ctx.InTag = &TagContext{Name: m.Name, Attrs: attrs}
	p.mode = ModeInTag
	p.buffer = buf[m.End:]
}

// stepTextFenceCandidate handles buf starting with up to 3 spaces followed
// by a backtick/tilde run (spec §4.3 step 5).
func (p *Parser) stepTextFenceCandidate(buf string) {
	indent := boundary.LeadingFenceIndent(buf, 0)
	if indent >= len(buf) {
		return // only indentation buffered so far; wait
	}
	char, runLen := boundary.FenceRunLength(buf, indent)
	if char == 0 {
		return
	}

	if runLen < 3 {
		if indent+runLen == len(buf) {
			// The run might still be growing.
			if len(buf) >= p.cfg.SpecBufferLength {
				p.textHold += buf
				p.buffer = ""
				return
			}
			return
		}
		// Run is complete (bounded by a different following byte) and too
		// short to be a fence. Peel one character and let the rest be
		// re-examined.
		p.textHold += buf[:1]
		p.buffer = buf[1:]
		return
	}

	rest := buf[indent+runLen:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		if len(buf) >= p.cfg.SpecBufferLength {
			p.textHold += buf
			p.buffer = ""
			return
		}
		return
	}

	infoRaw := rest[:nl]
	lang := boundary.TrimInfoString(infoRaw)

	p.flushTextHold()

	kind := FenceBacktick
	if char == '~' {
		kind = FenceTilde
	}
	p.emitEvent(Event{Type: EventCodeFenceStart, Fence: kind, Lang: lang})

	p.currentFence = &activeFence{char: char, len: runLen, kind: kind, lang: lang}
	p.ctx.InCodeFence = &FenceContext{Fence: kind, Lang: lang}
	p.mode = ModeInFence
	p.buffer = buf[indent+runLen+nl+1:]
}
