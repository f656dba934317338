package nop

import (
	"context"

	"github.com/papercomputeco/folio/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishGraphBuilt validates input and otherwise does nothing.
func (p *Publisher) PublishGraphBuilt(_ context.Context, event *eventstream.GraphBuiltEvent) error {
	if event == nil {
		return eventstream.ErrNilGraphEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
