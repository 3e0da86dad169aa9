package introspect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(author{}, "authors"))
	require.NoError(t, r.RegisterStruct(post{}, "posts"))

	at := reflect.TypeOf(author{})

	name, err := r.CollectionName(at)
	require.NoError(t, err)
	assert.Equal(t, "authors", name)

	d, err := r.DescriptorFor(at)
	require.NoError(t, err)
	assert.Equal(t, "author_id", d.Describe().PrimaryKey)

	got, ok := r.TypeFor("posts")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(post{}), got)

	assert.True(t, r.IsRegistered(at))
	assert.False(t, r.IsRegistered(reflect.TypeOf(team{})))
	assert.Equal(t, 2, r.Count())
	assert.ElementsMatch(t, []string{"authors", "posts"}, r.Collections())
}

func TestRegistryPointerSampleValue(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(&author{}, "authors"))
	assert.True(t, r.IsRegistered(reflect.TypeOf(author{})))
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(author{}, "authors"))

	err := r.RegisterStruct(author{}, "writers")
	assert.Error(t, err, "a type registers once")

	err = r.RegisterStruct(post{}, "authors")
	assert.Error(t, err, "a collection name registers once")
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.DescriptorFor(reflect.TypeOf(author{}))
	assert.ErrorIs(t, err, ErrIntrospection)

	_, err = r.CollectionName(reflect.TypeOf(author{}))
	assert.ErrorIs(t, err, ErrUnresolvedType)

	_, ok := r.TypeFor("authors")
	assert.False(t, ok)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(author{}, "authors"))
	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.False(t, r.IsRegistered(reflect.TypeOf(author{})))
}
