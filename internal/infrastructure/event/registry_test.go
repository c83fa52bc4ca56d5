package event

import (
	"testing"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := newRecordingHandler()
		registry.Register(h, inventory.EventTypeTransactionApproved, inventory.EventTypeTransactionCompleted)

		assert.Len(t, registry.GetHandlers(inventory.EventTypeTransactionApproved), 1)
		assert.Len(t, registry.GetHandlers(inventory.EventTypeTransactionCompleted), 1)
		assert.Empty(t, registry.GetHandlers(inventory.EventTypeTransactionFailed))
	})

	t.Run("wildcard follows typed handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		typed := newRecordingHandler()
		wildcard := newRecordingHandler()
		registry.Register(wildcard)
		registry.Register(typed, inventory.EventTypeStockBelowMinimum)

		handlers := registry.GetHandlers(inventory.EventTypeStockBelowMinimum)
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])
	})

	t.Run("duplicate registrations collapse", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := newRecordingHandler()
		registry.Register(h, inventory.EventTypeTransactionRecorded)
		registry.Register(h, inventory.EventTypeTransactionRecorded)
		registry.Register(h)

		assert.Len(t, registry.GetHandlers(inventory.EventTypeTransactionRecorded), 1)
		assert.Equal(t, 1, registry.Len())
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newRecordingHandler()
	second := newRecordingHandler()
	wildcard := newRecordingHandler()
	registry.Register(first, inventory.EventTypeTransactionRecorded)
	registry.Register(second, inventory.EventTypeTransactionRecorded)
	registry.Register(wildcard)
	assert.Equal(t, 3, registry.Len())

	registry.Unregister(first)
	registry.Unregister(wildcard)

	handlers := registry.GetHandlers(inventory.EventTypeTransactionRecorded)
	assert.Len(t, handlers, 1)
	assert.Same(t, second, handlers[0])
	assert.Equal(t, 1, registry.Len())

	registry.Unregister(second)
	assert.Empty(t, registry.GetHandlers(inventory.EventTypeTransactionRecorded))
	assert.Equal(t, 0, registry.Len())
}
