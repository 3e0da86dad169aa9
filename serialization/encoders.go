package serialization

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/restless-go/restless/introspect"
)

// Encoders resolves the registered Serializer for each model type. Like the
// model registry, it is owned by the surrounding application and built at
// setup time; lookups are safe for concurrent use afterwards.
type Encoders struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Serializer
}

// NewEncoders creates an empty serializer registry
func NewEncoders() *Encoders {
	return &Encoders{
		byType: make(map[reflect.Type]*Serializer),
	}
}

// Register registers the serializer for a model type. The model argument is a
// sample value of the type.
func (e *Encoders) Register(model any, s *Serializer) error {
	t := introspect.ModelType(model)
	if t == nil || s == nil {
		return fmt.Errorf("model and serializer are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.byType[t]; exists {
		return fmt.Errorf("serializer for %s is already registered", t)
	}
	e.byType[t] = s
	return nil
}

// For resolves the serializer registered for a model type.
func (e *Encoders) For(t reflect.Type) (*Serializer, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, exists := e.byType[t]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNoSerializer, t)
	}
	return s, nil
}

// Count returns the number of registered serializers
func (e *Encoders) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.byType)
}
