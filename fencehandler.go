package tokenloom

import "github.com/alaa-eddine/tokenloom/internal/boundary"

// stepFence advances recognition while in ModeInFence, per spec §4.5.
func (p *Parser) stepFence() {
	buf := p.buffer
	if len(buf) < p.cfg.SpecMinParseLength {
		return
	}

	f := p.currentFence
	m, found := boundary.FindFenceClose(buf, f.char, f.len)
	if !found {
		tailLen := p.cfg.SpecMinParseLength - 1
		if f.len > tailLen {
			tailLen = f.len
		}
		if tailLen < 1 {
			tailLen = 1
		}
		if len(buf) <= tailLen {
			return
		}
		emitLen := len(buf) - tailLen
		p.emitFenceChunks(buf[:emitLen])
		p.buffer = buf[emitLen:]
		return
	}

	pre := buf[:m.Start]
	p.emitFenceChunks(pre)
	p.drainHold(&p.fenceHold, EventCodeFenceChunk)
	p.emitEvent(Event{Type: EventCodeFenceEnd})
	p.buffer = buf[m.End:]
	p.currentFence = nil
	p.ctx.InCodeFence = nil
	p.mode = ModeText
}
