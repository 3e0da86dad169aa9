// Package introspect resolves model metadata for the serialization engine.
// Every model type exposes its shape through a Descriptor; a type-keyed
// Registry owns the descriptors and the collection names resolved from them.
// The engine itself never special-cases concrete model types.
package introspect

import "reflect"

// Description holds the introspected field-level shape of one model type.
type Description struct {
	// Attributes are the persisted attribute names, including the primary key
	// and any foreign-key-backed attributes.
	Attributes []string

	// HybridAttributes are computed attribute names backed by methods rather
	// than stored fields.
	HybridAttributes []string

	// Relations are the declared relation names.
	Relations []string

	// ForeignKeys are the attribute names that back foreign keys. They are
	// never emitted as user-visible attributes.
	ForeignKeys []string

	// PrimaryKey is the attribute name of the primary key.
	PrimaryKey string
}

// Descriptor supplies metadata and value access for one model type. All
// methods must be safe for concurrent read access.
type Descriptor interface {
	// Describe returns the field-level shape of the model type.
	Describe() *Description

	// Value reads the named attribute from an instance. Names not declared on
	// the model are resolved dynamically (field or zero-argument method),
	// which is how additional attributes are supported. The second return is
	// false when the name cannot be resolved on the instance.
	Value(instance any, name string) (any, bool)

	// RelationValue reads the named relation from an instance. To-many
	// relations return a slice value; to-one relations return the related
	// instance or nil.
	RelationValue(instance any, name string) (any, bool)

	// IsToMany reports whether the named relation behaves as a list.
	IsToMany(instance any, relation string) bool

	// RelatedType returns the model type a relation points at, when declared.
	RelatedType(relation string) (reflect.Type, bool)
}

// ModelType returns the registry key for an instance: its concrete type with
// any pointer indirection stripped.
func ModelType(instance any) reflect.Type {
	return indirectType(reflect.TypeOf(instance))
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
