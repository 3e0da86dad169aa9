package introspect

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps model types to their descriptors and collection names. It is
// owned by the surrounding application and passed into the serializers at
// construction; there is no process-global state.
//
// The registry is built at setup time and safe for concurrent reads
// afterwards.
type Registry struct {
	mu          sync.RWMutex
	models      map[reflect.Type]*registration
	collections map[string]reflect.Type
}

type registration struct {
	descriptor Descriptor
	collection string
}

// NewRegistry creates a new model registry
func NewRegistry() *Registry {
	return &Registry{
		models:      make(map[reflect.Type]*registration),
		collections: make(map[string]reflect.Type),
	}
}

// Register registers a model type under a collection name. The model argument
// is a sample value of the type (a zero value or pointer works).
func (r *Registry) Register(model any, collection string, d Descriptor) error {
	t := ModelType(model)
	if t == nil || d == nil {
		return fmt.Errorf("model and descriptor are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[t]; exists {
		return fmt.Errorf("model %s is already registered", t)
	}
	if existing, exists := r.collections[collection]; exists {
		return fmt.Errorf("collection %q is already registered to %s", collection, existing)
	}

	r.models[t] = &registration{descriptor: d, collection: collection}
	r.collections[collection] = t
	return nil
}

// RegisterStruct describes a struct model via reflection and registers it in
// one step.
func (r *Registry) RegisterStruct(model any, collection string, opts ...DescribeOption) error {
	d, err := DescribeStruct(model, opts...)
	if err != nil {
		return err
	}
	return r.Register(model, collection, d)
}

// DescriptorFor resolves the descriptor for a model type.
func (r *Registry) DescriptorFor(t reflect.Type) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.models[t]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrIntrospection, t)
	}
	return reg.descriptor, nil
}

// CollectionName resolves the resource-type name registered for a model type.
func (r *Registry) CollectionName(t reflect.Type) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.models[t]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedType, t)
	}
	return reg.collection, nil
}

// TypeFor returns the model type registered under a collection name.
func (r *Registry) TypeFor(collection string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.collections[collection]
	return t, exists
}

// IsRegistered checks if a model type is registered
func (r *Registry) IsRegistered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.models[t]
	return exists
}

// Collections returns a list of all registered collection names
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered model types
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.models)
}

// Clear removes all registered models (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models = make(map[reflect.Type]*registration)
	r.collections = make(map[string]reflect.Type)
}
