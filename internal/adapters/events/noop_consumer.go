package events

import "context"

// NoopConsumer keeps the worker loop alive when no brokers are configured;
// it never yields intake messages.
type NoopConsumer struct{}

func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

func (n *NoopConsumer) Poll(_ context.Context, _ int) ([]Message, error) {
	return nil, nil
}
