// Package bus implements the event delivery surface described in spec §4.7:
// a registration-ordered list of sinks, each optionally contributing to a
// three-stage pre/main/post transformation pipeline, feeding both
// named-topic subscribers and a pull-style iterator, with optional pacing
// between deliveries.
package bus

import "github.com/alaa-eddine/tokenloom"

// PreTransformer, Transformer, and PostTransformer are the three optional
// pipeline stages a Sink may implement. A stage returns the events that
// should replace the one it was given: nil/empty drops it, one event
// replaces it, more than one splices them in — mirroring spec §4.7's
// null/single/array flattening rule as a plain Go slice return. An error
// leaves the input event list for this sink untouched for this stage (spec
// §4.7: "the original list for that sink is preserved on error") and is
// reported via bus.Config's suppress behavior.
type PreTransformer interface {
	PreTransform(tokenloom.Event) ([]tokenloom.Event, error)
}

type Transformer interface {
	Transform(tokenloom.Event) ([]tokenloom.Event, error)
}

type PostTransformer interface {
	PostTransform(tokenloom.Event) ([]tokenloom.Event, error)
}

// Observer receives every event that survives the full pipeline, before it
// is published to topic subscribers and the pull iterator. It cannot drop or
// rewrite events;
// it is the passive-observer role spec §4.7 names alongside the three
// transform stages.
type Observer interface {
	Observe(tokenloom.Event)
}

// Disposer is called once, in registration order, when the Bus is disposed.
type Disposer interface {
	Dispose()
}

// Sink is any value registered with a Bus. It implements zero or more of
// PreTransformer, Transformer, PostTransformer, Observer, and Disposer —
// there is no single required method, matching how spec §4.7 describes a
// sink as "provides zero or more of three transformation stages ... and/or
// acts as a passive observer".
type Sink = any
