// Package serialization converts in-memory model instances into JSON:API
// documents. A Serializer encodes one instance into a resource object, an
// IdentifierSerializer emits the minimal {id, type} linkage form, and a
// BatchSerializer encodes heterogeneous collections while aggregating
// per-item failures.
//
// The engine is synchronous and holds no mutable state across calls: a
// constructed serializer owns an immutable FieldSelection and reads
// everything else from the registry and resolver collaborators, so concurrent
// encode calls are safe as long as those collaborators are.
package serialization

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"unicode/utf8"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
	"github.com/restless-go/restless/routes"
)

// defaultMaxDepth bounds recursive encoding of model-typed attribute values.
// The original behavior on a cyclic object graph is unbounded recursion; the
// bound turns a cycle into a per-instance serialization failure.
const defaultMaxDepth = 8

// Serializer encodes instances of registered model types into JSON:API
// resource objects and documents.
type Serializer struct {
	models    *introspect.Registry
	urls      routes.Resolver
	encoders  *Encoders
	selection FieldSelection
	maxDepth  int
}

// Option customizes a Serializer at construction.
type Option func(*Serializer)

// WithMaxDepth overrides the nesting depth bound for model-typed attribute
// values.
func WithMaxDepth(depth int) Option {
	return func(s *Serializer) {
		s.maxDepth = depth
	}
}

// New creates a serializer. encoders may be nil, in which case nested
// model-typed attribute values are always encoded with default settings.
func New(models *introspect.Registry, urls routes.Resolver, encoders *Encoders, selection FieldSelection, opts ...Option) *Serializer {
	s := &Serializer{
		models:    models,
		urls:      urls,
		encoders:  encoders,
		selection: selection,
		maxDepth:  defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize returns a complete JSON:API document containing the resource
// object representation of the instance as its primary data.
//
// If only is non-nil, only the fields and relationships named in it appear in
// the result, except that id and type always appear. The filter is applied
// after the constructor-level selection: a field must survive both to be
// emitted. A failure is reported as a *SerializationError.
func (s *Serializer) Serialize(instance any, only []string) (*jsonapi.Document, error) {
	resource, err := s.resource(instance, only, 0)
	if err != nil {
		return nil, err
	}
	return jsonapi.NewDocument(resource), nil
}

// resource encodes one instance into a resource object. depth tracks nested
// encoding of model-typed attribute values.
func (s *Serializer) resource(instance any, only []string, depth int) (*jsonapi.Resource, error) {
	t := introspect.ModelType(instance)
	desc, err := s.models.DescriptorFor(t)
	if err != nil {
		return nil, newError(instance, fmt.Sprintf("failed to get columns for model %s", t), err)
	}
	shape := desc.Describe()

	attrNames := selectAttributes(shape, s.selection, only)
	attributes := make(map[string]any, len(attrNames))
	for _, name := range attrNames {
		raw, ok := desc.Value(instance, name)
		if !ok {
			return nil, newError(instance, fmt.Sprintf("no attribute %q on model %s", name, t), nil)
		}
		val, err := s.normalize(raw, depth)
		if err != nil {
			return nil, newError(instance, fmt.Sprintf("failed to serialize attribute %q", name), err)
		}
		attributes[name] = val
	}

	collection, err := s.models.CollectionName(t)
	if err != nil {
		return nil, newError(instance, "failed to find collection name", err)
	}

	// The id is the primary-key value, coerced to a string. When the primary
	// key is not literally named "id", its attribute stays in the attribute
	// map under its own name in addition to feeding the id member.
	pk := shape.PrimaryKey
	idVal, inAttributes := attributes[pk]
	if !inAttributes {
		// The selection can filter the primary key out of the attribute map;
		// the id member still has to be populated, so read it directly.
		raw, ok := desc.Value(instance, pk)
		if !ok {
			return nil, newError(instance, fmt.Sprintf("no primary key value for model %s", t), nil)
		}
		if idVal, err = s.normalize(raw, depth); err != nil {
			return nil, newError(instance, "failed to serialize primary key", err)
		}
	}
	if pk == "id" {
		delete(attributes, "id")
	}
	id := CoerceID(idVal)

	resource := &jsonapi.Resource{ID: id, Type: collection}
	if len(attributes) > 0 {
		resource.Attributes = attributes
	}

	// Attach the self link unless the selection filtered it out or the model
	// has no read endpoint. A missing endpoint is not an error.
	if selfLinkSelected(s.selection, only) {
		selfURL, err := s.urls.SelfURL(collection, id)
		switch {
		case err == nil:
			resource.Links = map[string]string{"self": selfURL}
		case errors.Is(err, routes.ErrNoEndpoint):
		default:
			return nil, newError(instance, "failed to build self link", err)
		}
	}

	relations := selectRelations(shape, s.selection, only)
	if len(relations) > 0 {
		relationships := make(map[string]*jsonapi.Relationship, len(relations))
		for _, name := range relations {
			rel, err := s.relationship(instance, desc, collection, id, name)
			if err != nil {
				return nil, err
			}
			relationships[name] = rel
		}
		resource.Relationships = relationships
	}

	return resource, nil
}

// CoerceID converts a primary-key value to the string form required by the
// protocol. Byte keys that are not representable as text fall back to a
// percent-encoded form.
func CoerceID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return url.QueryEscape(string(x))
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

// sliceValues flattens a to-many relation value into its elements.
func sliceValues(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}
