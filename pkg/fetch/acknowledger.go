package fetch

import "context"

// ChannelAcknowledger acknowledges failures programmatically. Each failure
// is offered on Failures (dropped if nobody is listening and the buffer is
// full), then Acknowledge blocks until a value arrives on Acks.
type ChannelAcknowledger struct {
	Acks     chan struct{}
	Failures chan Failure
}

// NewChannelAcknowledger creates an acknowledger with a small failure buffer
func NewChannelAcknowledger() *ChannelAcknowledger {
	return &ChannelAcknowledger{
		Acks:     make(chan struct{}),
		Failures: make(chan Failure, 16),
	}
}

// Acknowledge implements Acknowledger
func (a *ChannelAcknowledger) Acknowledge(ctx context.Context, failure Failure) error {
	select {
	case a.Failures <- failure:
	default:
	}

	select {
	case <-a.Acks:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AcknowledgerFunc adapts a function to Acknowledger
type AcknowledgerFunc func(ctx context.Context, failure Failure) error

// Acknowledge implements Acknowledger
func (fn AcknowledgerFunc) Acknowledge(ctx context.Context, failure Failure) error {
	return fn(ctx, failure)
}
