package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/erp/inventory/internal/domain/shared"
)

// EventFactory returns an empty event to decode a payload into
type EventFactory func() shared.DomainEvent

// EventSerializer encodes events to JSON and decodes them back by event type.
// Only registered types are accepted in either direction.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewEventSerializer creates an empty serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]EventFactory)}
}

// Register binds eventType to the factory that decodes it
func (s *EventSerializer) Register(eventType string, factory EventFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

func (s *EventSerializer) factory(eventType string) (EventFactory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.factories[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	return f, nil
}

// Serialize encodes event as JSON
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if _, err := s.factory(event.EventType()); err != nil {
		return nil, err
	}
	return json.Marshal(event)
}

// Deserialize decodes data into a fresh event of eventType
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	f, err := s.factory(eventType)
	if err != nil {
		return nil, err
	}
	event := f()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	return event, nil
}

// RegisteredTypes returns the registered event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.factories))
}
