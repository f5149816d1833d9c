package tokenloom

// EventType names the kind of structured event the parser (or a downstream
// transform) produces.
type EventType string

// Event vocabulary, per spec §3/§6.2.
const (
	EventText           EventType = "text"
	EventTagOpen        EventType = "tag-open"
	EventTagClose       EventType = "tag-close"
	EventCodeFenceStart EventType = "code-fence-start"
	EventCodeFenceChunk EventType = "code-fence-chunk"
	EventCodeFenceEnd   EventType = "code-fence-end"
	EventFlush          EventType = "flush"
	EventEnd            EventType = "end"
	EventError          EventType = "error"
	EventBufferReleased EventType = "buffer-released"
)

// FenceKind is one of the two recognized fence delimiter characters repeated
// to form a fence marker.
type FenceKind string

// Recognized fence kinds.
const (
	FenceBacktick FenceKind = "```"
	FenceTilde    FenceKind = "~~~"
)

// Event is the unit delivered to sinks. Only the fields relevant to Type are
// populated; the rest are the zero value. The Parser sets Context on every
// event it emits and In on every one except flush/end; events the bus itself
// creates (buffer-released, transform errors) carry no In. Meta is populated
// by sinks/transforms that want to
// attach plugin-specific data and is nil unless written to.
type Event struct {
	Type EventType

	// EventText
	Text string

	// EventTagOpen / EventTagClose
	TagName string
	Attrs   *Attrs // EventTagOpen only

	// EventCodeFenceStart
	Fence FenceKind
	Lang  string

	// EventCodeFenceChunk reuses Text.

	// EventError
	Reason      string
	Recoverable bool

	// In is the parsing context active at the moment this event was
	// produced. Nil for Flush/End.
	In *ParsingContext

	// Context is the shared, mutable, per-parser-instance context map.
	Context SharedContext

	// Meta holds transform/sink-attached metadata, lazily allocated.
	Meta map[string]any
}

// SetMeta stores a metadata value on the event, allocating Meta if needed.
func (e *Event) SetMeta(key string, value any) {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
}

// GetMeta returns a metadata value previously stored with SetMeta.
func (e *Event) GetMeta(key string) (any, bool) {
	if e.Meta == nil {
		return nil, false
	}
	v, ok := e.Meta[key]
	return v, ok
}

// clone returns a shallow copy of the event sufficient for pipeline stages
// that want to mutate without affecting the original (Attrs/In are
// deep-enough copied since they describe point-in-time scope, not identity).
func (e Event) clone() Event {
	out := e
	if e.Attrs != nil {
		out.Attrs = e.Attrs.Clone()
	}
	if e.In != nil {
		cp := e.In.clone()
		out.In = &cp
	}
	if e.Meta != nil {
		out.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			out.Meta[k] = v
		}
	}
	return out
}
