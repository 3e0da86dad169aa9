package serialization

import (
	"fmt"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
)

// relationship builds the relationship object for one named relation of an
// instance: the relationship self link always, the related-resource link only
// when the target model type resolves to an encodable resource with a read
// endpoint, and linkage data shaped by the relation's cardinality.
func (s *Serializer) relationship(instance any, desc introspect.Descriptor, collection, id, relation string) (*jsonapi.Relationship, error) {
	self, related, err := s.urls.RelationshipURLs(collection, id, relation)
	if err != nil {
		return nil, newError(instance, fmt.Sprintf("failed to build links for relationship %q", relation), err)
	}
	links := map[string]string{"self": self}

	// A to-many relationship can be heterogeneous, so the related link is
	// gated on the declared target type; absence of a resolvable target is
	// not an error.
	if target, ok := desc.RelatedType(relation); ok {
		if targetCollection, err := s.models.CollectionName(target); err == nil {
			if _, err := s.urls.CollectionURL(targetCollection); err == nil {
				links["related"] = related
			}
		}
	}

	rel := &jsonapi.Relationship{Links: links}

	value, ok := desc.RelationValue(instance, relation)
	if !ok {
		return nil, newError(instance, fmt.Sprintf("no relation %q on model", relation), nil)
	}

	identifiers := &IdentifierSerializer{models: s.models}
	if desc.IsToMany(instance, relation) {
		items := sliceValues(value)
		// Always a sequence for to-many, even when empty.
		data := make([]*jsonapi.ResourceIdentifier, 0, len(items))
		for _, item := range items {
			rid, err := identifiers.identifier(item, "")
			if err != nil {
				return nil, err
			}
			data = append(data, rid)
		}
		rel.Data = data
	} else if value != nil {
		rid, err := identifiers.identifier(value, "")
		if err != nil {
			return nil, err
		}
		rel.Data = rid
	}

	return rel, nil
}
