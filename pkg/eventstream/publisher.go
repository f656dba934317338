package eventstream

import "context"

// Publisher publishes graph events to an event stream backend.
type Publisher interface {
	PublishGraphBuilt(ctx context.Context, event *GraphBuiltEvent) error
	Close() error
}
