package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathResolverURLs(t *testing.T) {
	r := NewPathResolver("http://example.com/api/")
	r.Expose("people", "articles")

	self, err := r.SelfURL("people", "42")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/people/42", self)

	coll, err := r.CollectionURL("articles")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/articles", coll)

	relSelf, related, err := r.RelationshipURLs("people", "42", "articles")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/people/42/relationships/articles", relSelf)
	assert.Equal(t, "http://example.com/api/people/42/articles", related)
}

func TestPathResolverEscapesID(t *testing.T) {
	r := NewPathResolver("http://example.com/api")
	r.Expose("files")

	self, err := r.SelfURL("files", "a b/c")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/files/a%20b%2Fc", self)
}

func TestPathResolverUnexposedCollection(t *testing.T) {
	r := NewPathResolver("http://example.com/api")

	_, err := r.SelfURL("tags", "1")
	assert.ErrorIs(t, err, ErrNoEndpoint)

	_, err = r.CollectionURL("tags")
	assert.ErrorIs(t, err, ErrNoEndpoint)

	_, _, err = r.RelationshipURLs("tags", "1", "owner")
	assert.ErrorIs(t, err, ErrNoEndpoint)
}
