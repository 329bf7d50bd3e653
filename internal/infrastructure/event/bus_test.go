package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, evt)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_PublishToTypedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	posted := newTestHandler("TransactionPosted")
	removed := newTestHandler("AssignmentRemoved")
	bus.Subscribe(posted)
	bus.Subscribe(removed)

	evt := newTestEvent("TransactionPosted")
	require.NoError(t, bus.Publish(context.Background(), evt))

	assert.Equal(t, 1, posted.count())
	assert.Same(t, evt, posted.handled[0])
	assert.Equal(t, 0, removed.count())
}

func TestInMemoryEventBus_WildcardReceivesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	all := newTestHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("TransactionPosted"),
		newTestEvent("AssignmentCreated"),
	))

	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("TransactionPosted")
	bus.Subscribe(h, "AssignmentCreated")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("AssignmentCreated")))

	assert.Equal(t, 1, h.count())
	assert.Equal(t, "AssignmentCreated", h.handled[0].EventType())
}

func TestInMemoryEventBus_HandlerErrorIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("TransactionPosted")
	failing.err = errors.New("boom")
	next := newTestHandler("TransactionPosted")
	bus.Subscribe(failing)
	bus.Subscribe(next)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))

	assert.Equal(t, 1, next.count())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Event handler failed", logs.All()[0].Message)
}

func TestInMemoryEventBus_RecoversHandlerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	panicking := newTestHandler()
	panicking.panicWith = "kaboom"
	bus.Subscribe(panicking)

	assert.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))
	})
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "kaboom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("TransactionPosted")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler()
	bus.Subscribe(h)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))
	assert.Equal(t, 0, h.count())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionPosted")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler()
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent("AssignmentCreated"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, h.count())
}
