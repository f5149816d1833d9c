package bus

import "errors"

var errNoRole = errors.New("bus: sink implements none of PreTransformer, Transformer, PostTransformer, Observer, Disposer")
