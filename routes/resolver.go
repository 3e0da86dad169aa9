// Package routes builds hypermedia links for encoded resources. The engine
// consumes the Resolver interface only; PathResolver is the default
// implementation used by the bundled API surface.
package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ErrNoEndpoint is returned when a collection has no read endpoint. Callers
// treat it as "omit the link", never as a fatal error.
var ErrNoEndpoint = errors.New("no endpoint registered for collection")

// Resolver builds URLs for resources, collections, and relationships. All
// methods must be safe for concurrent use.
type Resolver interface {
	// SelfURL returns the canonical URL of one resource.
	SelfURL(collection, id string) (string, error)

	// CollectionURL returns the URL of a collection's read endpoint. It is
	// also how the engine decides whether a related-resource link is
	// resolvable at all.
	CollectionURL(collection string) (string, error)

	// RelationshipURLs returns the relationship self link and the related
	// resource link for one relation of a resource.
	RelationshipURLs(collection, id, relation string) (self, related string, err error)
}

// PathResolver resolves URLs by path convention under a fixed base URL:
//
//	{base}/{collection}
//	{base}/{collection}/{id}
//	{base}/{collection}/{id}/relationships/{relation}
//	{base}/{collection}/{id}/{relation}
//
// Only collections exposed with Expose have endpoints; everything else
// resolves to ErrNoEndpoint.
type PathResolver struct {
	base      string
	mu        sync.RWMutex
	endpoints map[string]bool
}

// NewPathResolver creates a resolver rooted at the given base URL, e.g.
// "http://localhost:8080/api".
func NewPathResolver(base string) *PathResolver {
	return &PathResolver{
		base:      strings.TrimRight(base, "/"),
		endpoints: make(map[string]bool),
	}
}

// Expose registers a read endpoint for a collection.
func (r *PathResolver) Expose(collections ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range collections {
		r.endpoints[c] = true
	}
}

func (r *PathResolver) exposed(collection string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints[collection]
}

// SelfURL implements Resolver.
func (r *PathResolver) SelfURL(collection, id string) (string, error) {
	if !r.exposed(collection) {
		return "", fmt.Errorf("%w: %q", ErrNoEndpoint, collection)
	}
	return fmt.Sprintf("%s/%s/%s", r.base, collection, url.PathEscape(id)), nil
}

// CollectionURL implements Resolver.
func (r *PathResolver) CollectionURL(collection string) (string, error) {
	if !r.exposed(collection) {
		return "", fmt.Errorf("%w: %q", ErrNoEndpoint, collection)
	}
	return fmt.Sprintf("%s/%s", r.base, collection), nil
}

// RelationshipURLs implements Resolver.
func (r *PathResolver) RelationshipURLs(collection, id, relation string) (string, string, error) {
	if !r.exposed(collection) {
		return "", "", fmt.Errorf("%w: %q", ErrNoEndpoint, collection)
	}
	resource := fmt.Sprintf("%s/%s/%s", r.base, collection, url.PathEscape(id))
	self := fmt.Sprintf("%s/relationships/%s", resource, relation)
	related := fmt.Sprintf("%s/%s", resource, relation)
	return self, related, nil
}
