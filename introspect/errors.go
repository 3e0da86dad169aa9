package introspect

import "errors"

var (
	// ErrIntrospection is returned when a model type cannot be introspected
	ErrIntrospection = errors.New("model type cannot be introspected")

	// ErrUnresolvedType is returned when no collection name is registered for a model type
	ErrUnresolvedType = errors.New("no collection name registered for model type")
)
