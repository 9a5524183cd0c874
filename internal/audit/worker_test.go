package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domreg/pkg/domain"
)

func TestEmitterDeliversToSink(t *testing.T) {
	sink := NewMemoryPublisher()
	emitter := NewEmitter(sink, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- emitter.Run(ctx) }()

	emitter.Emit(ctx, Event{
		RegistrarID: "TheRegistrar",
		Command:     domain.CommandRenew,
		Domain:      "foo.example",
		TokenKey:    "tokeN",
		Outcome:     OutcomeRedeemed,
	})

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, time.Second, 10*time.Millisecond)

	got := sink.Events()[0]
	assert.Equal(t, OutcomeRedeemed, got.Outcome)
	assert.False(t, got.Timestamp.IsZero())

	cancel()
	require.NoError(t, <-done)
}

func TestEmitterFlushesOnShutdown(t *testing.T) {
	sink := NewMemoryPublisher()
	emitter := NewEmitter(sink, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	for range 3 {
		emitter.Emit(ctx, Event{Domain: "foo.example", Outcome: OutcomeNoToken})
	}
	cancel()

	require.NoError(t, emitter.Run(ctx))
	assert.Len(t, sink.Events(), 3)
}

func TestEmitFullBufferDropsInsteadOfBlocking(t *testing.T) {
	sink := NewMemoryPublisher()
	emitter := NewEmitter(sink, 1, nil)

	ctx := context.Background()
	emitter.Emit(ctx, Event{Domain: "a.example"})

	finished := make(chan struct{})
	go func() {
		emitter.Emit(ctx, Event{Domain: "b.example"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}
