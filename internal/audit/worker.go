package audit

import (
	"context"
	"log/slog"
	"time"
)

const publishTimeout = 5 * time.Second

// Emitter decouples command flows from audit delivery through a buffered
// channel. Emit never blocks; a full buffer drops the event with a warning
// rather than stalling domain commands.
type Emitter struct {
	inbox  chan Event
	sink   Publisher
	logger *slog.Logger
}

func NewEmitter(sink Publisher, buffer int, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		inbox:  make(chan Event, buffer),
		sink:   sink,
		logger: logger,
	}
}

// Emit queues an event for delivery.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case e.inbox <- event:
	default:
		e.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"domain", event.Domain, "outcome", event.Outcome)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is left
// and closes the sink. Delivery failures are logged, not propagated; audit
// is best-effort by the time a command has committed.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return e.sink.Close()
		case event := <-e.inbox:
			e.deliver(event)
		}
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case event := <-e.inbox:
			e.deliver(event)
		default:
			return
		}
	}
}

func (e *Emitter) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.sink.Publish(ctx, event); err != nil {
		e.logger.Error("audit publish failed",
			"domain", event.Domain, "outcome", event.Outcome, "error", err)
	}
}
