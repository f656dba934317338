package eventstream

import "errors"

// ErrNilGraphEvent indicates a nil graph event payload was provided to a publisher.
var ErrNilGraphEvent = errors.New("nil graph event")
