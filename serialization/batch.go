package serialization

import (
	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
)

// BatchSerializer encodes heterogeneous collections of instances, resolving
// the registered serializer per instance type and aggregating per-item
// failures.
type BatchSerializer struct {
	models   *introspect.Registry
	encoders *Encoders
}

// NewBatchSerializer creates a batch serializer over a model registry and a
// serializer registry.
func NewBatchSerializer(models *introspect.Registry, encoders *Encoders) *BatchSerializer {
	return &BatchSerializer{models: models, encoders: encoders}
}

// SerializeMany encodes every instance in input order. only maps resource
// type names to per-call sparse fieldsets; an absent entry means no per-call
// restriction for that type.
//
// Every item is attempted regardless of earlier failures. If any item fails,
// a single *MultipleErrors carrying all failures in encounter order is
// returned and the partial successes are discarded; the call is all-or-
// nothing from the caller's point of view. An empty input succeeds with an
// empty data sequence.
func (b *BatchSerializer) SerializeMany(instances []any, only map[string][]string) (*jsonapi.Document, error) {
	resources := make([]*jsonapi.Resource, 0, len(instances))
	var failed []*SerializationError

	for _, instance := range instances {
		t := introspect.ModelType(instance)

		enc, err := b.encoders.For(t)
		if err != nil {
			failed = append(failed, newError(instance, "failed to find serializer", err))
			continue
		}

		collection, err := b.models.CollectionName(t)
		if err != nil {
			failed = append(failed, newError(instance, "failed to find collection name", err))
			continue
		}

		resource, err := enc.resource(instance, only[collection], 0)
		if err != nil {
			failed = append(failed, asSerializationError(instance, err))
			continue
		}
		resources = append(resources, resource)
	}

	if len(failed) > 0 {
		return nil, &MultipleErrors{Errors: failed}
	}
	return jsonapi.NewDocument(resources), nil
}
