package bus

import (
	"sync"
	"time"

	"github.com/alaa-eddine/tokenloom"
)

// Wildcard is the pseudo event-type topic that receives every event,
// alongside its own per-type topic (spec §4.7: "named-topic subscribers
// (keyed by event type, plus a wildcard topic)").
const Wildcard tokenloom.EventType = "*"

type registeredSink struct {
	sink Sink
	pre  PreTransformer
	main Transformer
	post PostTransformer
	obs  Observer
	disp Disposer
}

// Config controls pipeline error handling and pacing. It mirrors the
// corresponding fields on tokenloom.Config so a caller typically builds one
// straight from the Config it gave the Parser.
type Config struct {
	// SuppressErrorsFromTransforms: true drops a failing stage silently;
	// false (default) additionally surfaces it as an `error` event.
	SuppressErrorsFromTransforms bool

	// EmitDelay paces successive deliveries by this duration. Zero delivers
	// as fast as the drain goroutine can run.
	EmitDelay time.Duration
}

// Bus is the event delivery surface a Parser's Emitter hands events to. All
// pipeline/delivery state is owned by a single dedicated goroutine (the
// drain loop) started by New, so Emit never blocks the caller and no
// locking is needed inside the pipeline itself — only the thin queue handoff
// between the calling goroutine and the drain goroutine is synchronized.
type Bus struct {
	cfg Config

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []tokenloom.Event
	closed  bool
	stopped bool

	// sinks is read by the drain goroutine without locking; Register appends
	// to it under mu. Topic subscribers are guarded by topicMu, and the pull
	// iterator has its own lock.
	sinks []registeredSink

	topicMu sync.Mutex
	topics  map[tokenloom.EventType][]chan tokenloom.Event

	pull *Iterator

	done chan struct{}
}

// New builds a Bus and starts its drain goroutine.
func New(cfg Config) *Bus {
	b := &Bus{
		cfg:    cfg,
		topics: make(map[tokenloom.EventType][]chan tokenloom.Event),
		pull:   newIterator(),
		done:   make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.drain()
	return b
}

// Register adds sink to the end of the registration order. Returns an error
// only if sink implements none of the recognized optional interfaces, since
// registering a value that can never do anything is almost certainly a
// mistake.
func (b *Bus) Register(sink Sink) error {
	rs := registeredSink{sink: sink}
	if p, ok := sink.(PreTransformer); ok {
		rs.pre = p
	}
	if m, ok := sink.(Transformer); ok {
		rs.main = m
	}
	if p, ok := sink.(PostTransformer); ok {
		rs.post = p
	}
	if o, ok := sink.(Observer); ok {
		rs.obs = o
	}
	if d, ok := sink.(Disposer); ok {
		rs.disp = d
	}
	if rs.pre == nil && rs.main == nil && rs.post == nil && rs.obs == nil && rs.disp == nil {
		return errNoRole
	}
	b.mu.Lock()
	b.sinks = append(b.sinks, rs)
	b.mu.Unlock()
	return nil
}

// Subscribe returns a channel delivering every surviving event whose Type
// equals eventType, or every event if eventType is Wildcard. The channel is
// closed when the Bus is disposed.
func (b *Bus) Subscribe(eventType tokenloom.EventType) <-chan tokenloom.Event {
	ch := make(chan tokenloom.Event, 64)
	b.topicMu.Lock()
	b.topics[eventType] = append(b.topics[eventType], ch)
	b.topicMu.Unlock()
	return ch
}

// Iterator returns the Bus's pull-style iterator, which receives every
// surviving event in order (spec §4.7 point 3b).
func (b *Bus) Iterator() *Iterator {
	return b.pull
}

// Emit implements tokenloom.Emitter: Parser.Feed/Flush hand events here.
// Emit never blocks.
func (b *Bus) Emit(e tokenloom.Event) {
	b.mu.Lock()
	if !b.closed {
		b.queue = append(b.queue, e)
		b.cond.Signal()
	}
	b.mu.Unlock()
}

// Dispose stops accepting new events, discards anything still queued,
// resolves the pull iterator and every topic subscriber with a closed
// channel, and invokes Dispose on every sink that implements Disposer, in
// registration order.
func (b *Bus) Dispose() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.queue = nil
	b.cond.Signal()
	b.mu.Unlock()

	<-b.done

	b.pull.close()
	b.topicMu.Lock()
	for _, chans := range b.topics {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.topicMu.Unlock()

	for _, rs := range b.sinks {
		if rs.disp != nil {
			rs.disp.Dispose()
		}
	}
}

// drain is the single goroutine that owns pipeline/delivery state.
func (b *Bus) drain() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if b.closed {
			b.mu.Unlock()
			return
		}
		e := b.queue[0]
		b.queue = b.queue[1:]
		emptyAfter := len(b.queue) == 0
		b.mu.Unlock()

		b.deliverPiped(e)

		if emptyAfter {
			b.deliverPiped(tokenloom.Event{Type: tokenloom.EventBufferReleased})
		}
	}
}

// deliverPiped runs e through the transformation pipeline and fans the
// survivors out to observers, topic subscribers, and the pull iterator,
// pacing each one by cfg.EmitDelay if set.
func (b *Bus) deliverPiped(e tokenloom.Event) {
	for _, out := range b.runPipeline(e) {
		if b.cfg.EmitDelay > 0 {
			time.Sleep(b.cfg.EmitDelay)
		}
		b.notifyObservers(out)
		b.publishToTopics(out)
		b.pull.push(out)
	}
}

func (b *Bus) notifyObservers(e tokenloom.Event) {
	for _, rs := range b.sinks {
		if rs.obs != nil {
			rs.obs.Observe(e)
		}
	}
}

func (b *Bus) publishToTopics(e tokenloom.Event) {
	b.topicMu.Lock()
	chans := append(append([]chan tokenloom.Event{}, b.topics[e.Type]...), b.topics[Wildcard]...)
	b.topicMu.Unlock()
	for _, ch := range chans {
		select {
		case ch <- e:
		default:
			// A stalled subscriber must not stall the bus (§5: feed/flush
			// stay non-blocking); drop for that subscriber rather than
			// block the single drain goroutine.
		}
	}
}
