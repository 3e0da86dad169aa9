package serialization

import (
	"fmt"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
)

// IdentifierSerializer encodes resource identifier objects for use in
// relationship linkage. It differs from Serializer in that it only emits the
// id and type members.
type IdentifierSerializer struct {
	models *introspect.Registry
}

// NewIdentifierSerializer creates an identifier serializer over a model
// registry.
func NewIdentifierSerializer(models *introspect.Registry) *IdentifierSerializer {
	return &IdentifierSerializer{models: models}
}

// identifier builds the {id, type} reference for one instance. explicitType
// skips collection-name resolution when the relation's declared type is
// already known.
func (s *IdentifierSerializer) identifier(instance any, explicitType string) (*jsonapi.ResourceIdentifier, error) {
	t := introspect.ModelType(instance)

	collection := explicitType
	if collection == "" {
		var err error
		if collection, err = s.models.CollectionName(t); err != nil {
			return nil, newError(instance, "failed to find collection name", err)
		}
	}

	desc, err := s.models.DescriptorFor(t)
	if err != nil {
		return nil, newError(instance, fmt.Sprintf("failed to get columns for model %s", t), err)
	}
	pk := desc.Describe().PrimaryKey
	raw, ok := desc.Value(instance, pk)
	if !ok {
		return nil, newError(instance, fmt.Sprintf("no primary key value for model %s", t), nil)
	}

	return &jsonapi.ResourceIdentifier{ID: CoerceID(raw), Type: collection}, nil
}

// Serialize returns a document whose primary data is the resource identifier
// of the instance.
func (s *IdentifierSerializer) Serialize(instance any, explicitType string) (*jsonapi.Document, error) {
	rid, err := s.identifier(instance, explicitType)
	if err != nil {
		return nil, err
	}
	return jsonapi.NewDocument(rid), nil
}

// SerializeMany encodes each instance independently. Every instance is
// attempted; if any fail, a single *MultipleErrors carrying all failures in
// input order is returned and the successes are discarded.
func (s *IdentifierSerializer) SerializeMany(instances []any, explicitType string) (*jsonapi.Document, error) {
	identifiers := make([]*jsonapi.ResourceIdentifier, 0, len(instances))
	var failed []*SerializationError
	for _, instance := range instances {
		rid, err := s.identifier(instance, explicitType)
		if err != nil {
			failed = append(failed, asSerializationError(instance, err))
			continue
		}
		identifiers = append(identifiers, rid)
	}
	if len(failed) > 0 {
		return nil, &MultipleErrors{Errors: failed}
	}
	return jsonapi.NewDocument(identifiers), nil
}
