// Package jsonapi defines the JSON:API document value model produced by the
// serialization engine: resource objects, resource identifiers, relationship
// objects, and the top-level document envelope.
//
// The types here are plain values with no behavior beyond JSON marshaling;
// they are constructed fresh per call and owned by the caller.
package jsonapi

const (
	// MediaType is the official JSON:API media type
	MediaType = "application/vnd.api+json"

	// Version is the highest version of the JSON:API specification supported
	Version = "1.0"
)

// Resource represents a single resource object. ID and Type are always
// present; ID is always a string even when the underlying primary key is not.
type Resource struct {
	ID            string                   `json:"id"`
	Type          string                   `json:"type"`
	Attributes    map[string]any           `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Links         map[string]string        `json:"links,omitempty"`
}

// ResourceIdentifier is the minimal {id, type} reference used for
// relationship linkage.
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship describes how one resource relates to another. Data holds a
// *ResourceIdentifier or nil for a to-one relation, and a (possibly empty)
// []*ResourceIdentifier for a to-many relation. The field deliberately has no
// omitempty: a null to-one linkage must marshal as "data": null and an empty
// to-many linkage as "data": [].
type Relationship struct {
	Links map[string]string `json:"links,omitempty"`
	Data  any               `json:"data"`
}

// VersionObject is the jsonapi member of the top-level document.
type VersionObject struct {
	Version string `json:"version"`
}

// Document is the top-level JSON:API document envelope.
type Document struct {
	Data     any               `json:"data"`
	JSONAPI  VersionObject     `json:"jsonapi"`
	Links    map[string]string `json:"links"`
	Meta     map[string]any    `json:"meta"`
	Included []*Resource       `json:"included"`
}

// NewDocument wraps primary data into a document with the fixed envelope
// fields. data may be a *Resource, a []*Resource, a *ResourceIdentifier, a
// []*ResourceIdentifier, or nil. No validation beyond shape is performed.
func NewDocument(data any) *Document {
	return &Document{
		Data:     data,
		JSONAPI:  VersionObject{Version: Version},
		Links:    map[string]string{},
		Meta:     map[string]any{},
		Included: []*Resource{},
	}
}
