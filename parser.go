package tokenloom

import (
	"regexp"

	"github.com/alaa-eddine/tokenloom/internal/boundary"
	"github.com/alaa-eddine/tokenloom/segment"
)

// Mode is the parser's current recognition state. At most one of the tag/
// fence scopes is active at a time (the non-nested invariant, spec §2).
type Mode int

// Recognized modes.
const (
	ModeText Mode = iota
	ModeInTag
	ModeInFence
)

// String implements fmt.Stringer for log output.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeInTag:
		return "in-tag"
	case ModeInFence:
		return "in-fence"
	default:
		return "unknown"
	}
}

// activeFence tracks the delimiter that opened the fence currently being
// parsed, so the closing line can be matched against the same character and
// run length.
type activeFence struct {
	char byte
	len  int
	kind FenceKind
	lang string
}

// Parser is an incremental, fragmentation-tolerant recognizer for a chunked
// text stream: it accepts arbitrarily-sized chunks via Feed and produces a
// structured event stream through an Emitter, never assuming a chunk
// boundary lines up with a token, tag, or fence boundary.
//
// A Parser is not safe for concurrent use — it is built to run on a single
// logical thread of control, the same cooperative model spec §5 describes
// for the bus it typically feeds.
type Parser struct {
	cfg Config
	emit Emitter

	mode   Mode
	buffer string

	textHold string
	segHold  string
	fenceHold string

	currentTagName  string
	currentTagAttrs *Attrs
	currentTagRaw   string

	currentFence *activeFence

	ctx       ParsingContext
	sharedCtx SharedContext

	tagCloseCache map[string]*regexp.Regexp

	pending   []Event
	disposed  bool
	flushed   bool
}

// New builds a Parser from cfg (validated in place) and emit, the sink that
// receives every event as soon as it is produced. Pass a nil Emitter to rely
// solely on the slices Feed/Flush return.
func New(cfg Config, emit Emitter) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if emit == nil {
		emit = discardEmitter{}
	}
	return &Parser{
		cfg:           cfg,
		emit:          emit,
		mode:          ModeText,
		sharedCtx:     make(SharedContext),
		tagCloseCache: make(map[string]*regexp.Regexp),
	}, nil
}

// Mode reports the parser's current recognition state.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Tags returns the recognized tag names, in unspecified order.
func (p *Parser) Tags() []string {
	out := make([]string, 0, len(p.cfg.Tags))
	for name := range p.cfg.Tags {
		out = append(out, name)
	}
	return out
}

// FeedString is an alias for Feed, named for symmetry with Write.
func (p *Parser) FeedString(chunk string) []Event {
	return p.Feed(chunk)
}

// Write implements io.Writer by feeding p the bytes as a chunk. It never
// returns an error; n is always len(b).
func (p *Parser) Write(b []byte) (int, error) {
	p.Feed(string(b))
	return len(b), nil
}

// Feed appends chunk to the parser's input and drives recognition as far
// forward as the buffered input allows, returning the events produced by
// this call (which were also, as they were produced, handed to the
// Parser's Emitter).
func (p *Parser) Feed(chunk string) []Event {
	if p.disposed {
		return nil
	}
	p.pending = nil
	p.buffer += chunk
	p.pump()
	if p.buffer == "" && p.mode != ModeInFence {
		p.flushTextHold()
	}
	return p.pending
}

// pump repeatedly invokes the handler for the current mode until either no
// progress is made (buffer length and mode both unchanged across an
// invocation) or the buffer is empty.
func (p *Parser) pump() {
	for p.buffer != "" {
		beforeLen := len(p.buffer)
		beforeMode := p.mode

		switch p.mode {
		case ModeText:
			p.stepText()
		case ModeInTag:
			p.stepTag()
		case ModeInFence:
			p.stepFence()
		}

		if len(p.textHold) >= p.cfg.BufferLength {
			p.flushTextHold()
		}

		if len(p.buffer) == beforeLen && p.mode == beforeMode {
			return
		}
	}
}

// Flush forces out everything still buffered or held, closing any open tag
// or fence scope, then emits flush and end. It is idempotent: calling it
// again with nothing left buffered just re-emits flush/end.
func (p *Parser) Flush() []Event {
	if p.disposed {
		return nil
	}
	p.pending = nil

	if p.buffer != "" {
		p.textHold += p.buffer
		p.buffer = ""
	}

	switch p.mode {
	case ModeInTag:
		if p.currentTagRaw != "" {
			p.emitEvent(Event{Type: EventText, Text: p.currentTagRaw})
		}
		p.currentTagName = ""
		p.currentTagAttrs = nil
		p.currentTagRaw = ""
		p.ctx.InTag = nil
		p.mode = ModeText
	case ModeInFence:
		combined := p.fenceHold + p.textHold
		p.textHold = ""
		p.fenceHold = ""
		if combined != "" {
			p.emitEvent(Event{Type: EventCodeFenceChunk, Text: combined})
		}
		p.emitEvent(Event{Type: EventCodeFenceEnd})
		p.currentFence = nil
		p.ctx.InCodeFence = nil
		p.mode = ModeText
	}

	content := p.textHold
	p.textHold = ""
	p.emitSegmentedText(content)
	// The stream is definitively ending: force out whatever word-in-progress
	// emitSegmentedText just retained in seg_hold, the same way fence content
	// is force-drained on close (fencehandler.go's drainHold(&p.fenceHold, ...)).
	p.drainHold(&p.segHold, EventText)

	p.emitEvent(Event{Type: EventFlush})
	p.flushed = true
	p.emitEvent(Event{Type: EventEnd})

	return p.pending
}

// Dispose releases the parser's buffers. Feed/Flush are no-ops afterward.
// It does not itself emit events — a bus wrapping this parser is
// responsible for resolving any outstanding pull-iterator waiters and
// invoking sink dispose hooks, since those are bus-level concerns (spec
// §6.4/§7).
func (p *Parser) Dispose() {
	p.disposed = true
	p.buffer = ""
	p.textHold = ""
	p.segHold = ""
	p.fenceHold = ""
	p.currentTagName = ""
	p.currentTagAttrs = nil
	p.currentTagRaw = ""
	p.currentFence = nil
	p.ctx = ParsingContext{}
}

// flushTextHold force-segments and emits whatever is currently in text_hold,
// the raw not-yet-segmented plain-text accumulator (distinct from seg_hold,
// the retained unfinished-word tail left over from the last segmentation
// pass).
func (p *Parser) flushTextHold() {
	if p.textHold == "" {
		return
	}
	content := p.textHold
	p.textHold = ""
	p.emitSegmentedText(content)
}

// emitPieces segments hold+content per the configured EmitUnit and emits one
// event of type evType per resulting piece, retaining the final piece in
// *hold (instead of emitting it) when EmitUnit is UnitWord and that piece
// still ends in a word character — spec §4.2's "might still grow" rule.
func (p *Parser) emitPieces(content string, hold *string, evType EventType) {
	full := *hold + content
	*hold = ""
	if full == "" {
		return
	}
	pieces := segment.Split(full, p.segUnit())
	if p.cfg.EmitUnit == UnitWord && len(pieces) > 0 {
		last := pieces[len(pieces)-1]
		if segment.LastCharIsWord(last) {
			pieces = pieces[:len(pieces)-1]
			*hold = last
		}
	}
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		p.emitEvent(Event{Type: evType, Text: piece})
	}
}

func (p *Parser) emitSegmentedText(content string) {
	p.emitPieces(content, &p.segHold, EventText)
}

func (p *Parser) emitFenceChunks(content string) {
	p.emitPieces(content, &p.fenceHold, EventCodeFenceChunk)
}

// drainHold force-emits whatever remains in *hold as one final piece,
// without re-applying the word-continuation retention rule — used when a
// fence is closing or Flush is ending the stream, where no more input could
// ever complete the held word.
func (p *Parser) drainHold(hold *string, evType EventType) {
	if *hold == "" {
		return
	}
	s := *hold
	*hold = ""
	p.emitEvent(Event{Type: evType, Text: s})
}

func (p *Parser) segUnit() segment.Unit {
	switch p.cfg.EmitUnit {
	case UnitWord:
		return segment.Word
	case UnitGrapheme:
		return segment.Grapheme
	default:
		return segment.Token
	}
}

// emitEvent stamps the shared/parsing context onto e (for non-terminal event
// types), appends it to this call's pending slice, and hands it to the
// Emitter immediately.
func (p *Parser) emitEvent(e Event) {
	e.Context = p.sharedCtx
	if e.Type != EventFlush && e.Type != EventEnd {
		ctx := p.ctx.clone()
		e.In = &ctx
	}
	p.pending = append(p.pending, e)
	p.emit.Emit(e)
}

// tagCloseRegex returns the cached close-tag matcher for name, compiling and
// caching it on first use.
func (p *Parser) tagCloseRegex(name string) *regexp.Regexp {
	if re, ok := p.tagCloseCache[name]; ok {
		return re
	}
	re := boundary.TagCloseRegex(name)
	p.tagCloseCache[name] = re
	return re
}

// buildAttrs folds an ordered list of key/value pairs parsed out of a tag's
// raw attribute source into an Attrs (last-write-wins on value,
// first-write-wins on position) — see attrs.go.
func buildAttrs(src string) *Attrs {
	attrs := NewAttrs()
	for _, kv := range boundary.ParseAttrs(src) {
		attrs.Set(kv.Key, kv.Value)
	}
	return attrs
}
