package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedAndWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(typed, "TransactionPosted", "AssignmentCreated")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("TransactionPosted")
	if assert.Len(t, handlers, 2) {
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])
	}
	assert.Len(t, registry.GetHandlers("AssignmentRemoved"), 1)
	assert.Equal(t, []string{"AssignmentCreated", "TransactionPosted"}, registry.EventTypes())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()

	registry.Register(a, "TransactionPosted")
	registry.Register(b, "TransactionPosted")
	registry.Register(a)

	registry.Unregister(a)

	handlers := registry.GetHandlers("TransactionPosted")
	if assert.Len(t, handlers, 1) {
		assert.Same(t, b, handlers[0])
	}

	registry.Unregister(b)
	assert.Empty(t, registry.GetHandlers("TransactionPosted"))
	assert.Empty(t, registry.EventTypes())
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(newTestHandler(), "TransactionPosted")

	handlers := registry.GetHandlers("TransactionPosted")
	handlers[0] = nil

	assert.NotNil(t, registry.GetHandlers("TransactionPosted")[0])
}
