package bus

import "github.com/alaa-eddine/tokenloom"

// runPipeline implements spec §4.7 point 2: starting from the singleton
// list [e], for each stage in order (pre, main, post), for each registered
// sink in registration order, apply its stage function to every event
// currently in the list, flattening the result.
func (b *Bus) runPipeline(e tokenloom.Event) []tokenloom.Event {
	list := []tokenloom.Event{e}

	list = b.applyStage(list, func(rs registeredSink) stageFunc {
		if rs.pre == nil {
			return nil
		}
		return rs.pre.PreTransform
	})
	list = b.applyStage(list, func(rs registeredSink) stageFunc {
		if rs.main == nil {
			return nil
		}
		return rs.main.Transform
	})
	list = b.applyStage(list, func(rs registeredSink) stageFunc {
		if rs.post == nil {
			return nil
		}
		return rs.post.PostTransform
	})

	return list
}

type stageFunc func(tokenloom.Event) ([]tokenloom.Event, error)

// applyStage runs one pipeline stage across every registered sink, in
// registration order, against the current survivor list.
func (b *Bus) applyStage(list []tokenloom.Event, pick func(registeredSink) stageFunc) []tokenloom.Event {
	for _, rs := range b.sinks {
		fn := pick(rs)
		if fn == nil {
			continue
		}
		next := make([]tokenloom.Event, 0, len(list))
		for _, cur := range list {
			out, err := fn(cur)
			if err != nil {
				// The original event for this sink's stage is preserved on
				// error (spec §4.7); the stage contributes nothing further.
				next = append(next, cur)
				if !b.cfg.SuppressErrorsFromTransforms {
					next = append(next, tokenloom.Event{
						Type:        tokenloom.EventError,
						Reason:      err.Error(),
						Recoverable: true,
						Context:     cur.Context,
					})
				}
				continue
			}
			next = append(next, out...)
		}
		list = next
	}
	return list
}
