package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restless-go/restless/jsonapi"
)

func TestIdentifierSerialize(t *testing.T) {
	env := newTestEnv(t)
	s := NewIdentifierSerializer(env.models)

	doc, err := s.Serialize(&Person{PersonID: 42, Name: "Ada"}, "")
	require.NoError(t, err)

	rid, ok := doc.Data.(*jsonapi.ResourceIdentifier)
	require.True(t, ok)
	assert.Equal(t, "42", rid.ID)
	assert.Equal(t, "people", rid.Type)
	assert.Equal(t, jsonapi.Version, doc.JSONAPI.Version)
}

func TestIdentifierExplicitTypeSkipsResolution(t *testing.T) {
	env := newTestEnv(t)
	s := NewIdentifierSerializer(env.models)

	doc, err := s.Serialize(&Person{PersonID: 7}, "authors")
	require.NoError(t, err)

	rid := doc.Data.(*jsonapi.ResourceIdentifier)
	assert.Equal(t, "authors", rid.Type)
}

func TestIdentifierSerializeManyAggregatesFailures(t *testing.T) {
	env := newTestEnv(t)
	s := NewIdentifierSerializer(env.models)

	type stranger struct{ ID int }
	instances := []any{
		&Person{PersonID: 1},
		&stranger{ID: 2},
		&Person{PersonID: 3},
		&stranger{ID: 4},
	}

	_, err := s.SerializeMany(instances, "")
	require.Error(t, err)

	var multi *MultipleErrors
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 2)
	assert.IsType(t, &stranger{}, multi.Errors[0].Instance)
	assert.IsType(t, &stranger{}, multi.Errors[1].Instance)
}

func TestIdentifierSerializeManySuccess(t *testing.T) {
	env := newTestEnv(t)
	s := NewIdentifierSerializer(env.models)

	doc, err := s.SerializeMany([]any{
		&Person{PersonID: 1},
		&Person{PersonID: 2},
	}, "")
	require.NoError(t, err)

	rids := doc.Data.([]*jsonapi.ResourceIdentifier)
	require.Len(t, rids, 2)
	assert.Equal(t, "1", rids[0].ID)
	assert.Equal(t, "2", rids[1].ID)
}
