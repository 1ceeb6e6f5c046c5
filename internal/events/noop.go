package events

import "context"

type noopPublisher struct{}

// NewNoopPublisher is the fallback when no Redis is configured; events are
// dropped and the pipeline runs unaffected.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
func (noopPublisher) Close() error                                { return nil }
