package bus

import (
	"context"
	"sync"

	"github.com/alaa-eddine/tokenloom"
)

// Iterator is the pull-style delivery surface from spec §4.7 point 3b: every
// surviving event is appended to its queue in order. Next awaits when the
// queue is empty and returns ok=false once the Bus is disposed and the
// queue has drained (the terminal "done" marker from spec §5).
type Iterator struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []tokenloom.Event
	closed bool
}

func newIterator() *Iterator {
	it := &Iterator{}
	it.cond = sync.NewCond(&it.mu)
	return it
}

func (it *Iterator) push(e tokenloom.Event) {
	it.mu.Lock()
	if !it.closed {
		it.queue = append(it.queue, e)
		it.cond.Signal()
	}
	it.mu.Unlock()
}

func (it *Iterator) close() {
	it.mu.Lock()
	it.closed = true
	it.cond.Broadcast()
	it.mu.Unlock()
}

// Next blocks until an event is available, the iterator is closed, or ctx is
// done. ok is false once the iterator is closed and its queue is empty, or
// when ctx is done before an event is available.
func (it *Iterator) Next(ctx context.Context) (tokenloom.Event, bool) {
	done := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				it.cond.Broadcast()
			case <-done:
			}
		}()
		defer close(done)
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	for len(it.queue) == 0 && !it.closed {
		if ctx != nil && ctx.Err() != nil {
			return tokenloom.Event{}, false
		}
		it.cond.Wait()
	}
	if len(it.queue) == 0 {
		return tokenloom.Event{}, false
	}
	e := it.queue[0]
	it.queue = it.queue[1:]
	return e, true
}
