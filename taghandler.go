package tokenloom

import (
	"strings"

	"github.com/alaa-eddine/tokenloom/internal/boundary"
)

// stepTag advances recognition while in ModeInTag, per spec §4.4.
func (p *Parser) stepTag() {
	buf := p.buffer
	name := p.currentTagName
	closeRe := p.tagCloseRegex(name)

	if loc := closeRe.FindStringIndex(buf); loc != nil {
		pre := buf[:loc[0]]
		p.emitSegmentedText(pre)
		p.emitEvent(Event{Type: EventTagClose, TagName: name})
		p.buffer = buf[loc[1]:]
		p.currentTagName = ""
		p.currentTagAttrs = nil
		p.currentTagRaw = ""
		p.ctx.InTag = nil
		p.mode = ModeText
		return
	}

	prefix := "</" + name
	skip := 0
	for {
		rel := strings.Index(buf[skip:], prefix)
		if rel < 0 {
			break
		}
		idx := skip + rel
		if idx > 0 {
			// A candidate later in the buffer: emit the text before it and
			// let the next call re-examine from its new front (closeRe
			// above will confirm or this same loop will re-validate it).
			p.emitSegmentedText(buf[:idx])
			p.buffer = buf[idx:]
			return
		}
		// idx == 0: the candidate starts at the very front of buf and
		// didn't satisfy closeRe above. Verify it could still resolve into
		// "\s*>" with more input before treating it as "still forming" —
		// otherwise a longer, unrelated tag name sharing this prefix (e.g.
		// "</thinking>" against name "think") would stall here forever,
		// since closeRe never matches and idx stays 0 indefinitely.
		if boundary.TagCloseStillForming(buf, len(prefix)) {
			return
		}
		// Disqualified: this occurrence can never become a valid close
		// marker. Skip past it and keep searching for the next candidate.
		skip = idx + len(prefix)
	}

	tailLen := boundary.TagClosePrefixLen(name)
	if len(buf) <= tailLen {
		return
	}
	emitLen := len(buf) - tailLen
	p.emitSegmentedText(buf[:emitLen])
	p.buffer = buf[emitLen:]
}
