package event

import (
	"context"
	"testing"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingHandler_Handle(t *testing.T) {
	event := newTransactionEvent(inventory.EventTypeTransactionApproved)

	t.Run("logs through the fallback logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		h := NewLoggingHandler(newInventorySerializer(), zap.New(core))

		require.NoError(t, h.Handle(context.Background(), event))

		entries := recorded.FilterMessage("Domain event").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, inventory.EventTypeTransactionApproved, fields["event_type"])
		assert.Equal(t, event.AggregateID().String(), fields["aggregate_id"])
		assert.Contains(t, fields["payload"], "REC-20261019-0001")
	})

	t.Run("prefers the request logger", func(t *testing.T) {
		fallbackCore, fallbackRecorded := observer.New(zapcore.InfoLevel)
		requestCore, requestRecorded := observer.New(zapcore.InfoLevel)
		h := NewLoggingHandler(newInventorySerializer(), zap.New(fallbackCore))

		ctx := logger.WithContext(context.Background(), zap.New(requestCore))
		require.NoError(t, h.Handle(ctx, event))

		assert.Equal(t, 0, fallbackRecorded.Len())
		assert.Equal(t, 1, requestRecorded.Len())
	})

	t.Run("unregistered events fail", func(t *testing.T) {
		h := NewLoggingHandler(NewEventSerializer(), nil)
		assert.Error(t, h.Handle(context.Background(), event))
	})

	t.Run("subscribes to every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		core, recorded := observer.New(zapcore.InfoLevel)
		bus.Subscribe(NewLoggingHandler(newInventorySerializer(), zap.New(core)))

		require.NoError(t, bus.Publish(context.Background(),
			event, newTransactionEvent(inventory.EventTypeTransactionCompleted)))
		assert.Equal(t, 2, recorded.Len())
	})
}
