package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
	"github.com/restless-go/restless/routes"
	"github.com/restless-go/restless/serialization"
)

type testPerson struct {
	PersonID int          `restless:"primary,person_id"`
	Name     string       `restless:"attr,name"`
	Birthday time.Time    `restless:"attr,birthday"`
	Articles []*testPost  `restless:"relation,articles"`
	Employer *testCompany `restless:"relation,employer"`
}

type testPost struct {
	ID       int         `restless:"primary"`
	Title    string      `restless:"attr,title"`
	AuthorID int         `restless:"fk,author_id"`
	Author   *testPerson `restless:"relation,author"`
}

type testCompany struct {
	ID   int `restless:"primary"`
	Name string
}

type staticSource struct {
	data map[string][]any
	err  error
}

func (s *staticSource) List(_ context.Context, collection string) ([]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data[collection], nil
}

func (s *staticSource) Get(_ context.Context, collection, id string) (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, instance := range s.data[collection] {
		switch v := instance.(type) {
		case *testPerson:
			if serialization.CoerceID(v.PersonID) == id {
				return v, nil
			}
		case *testPost:
			if serialization.CoerceID(v.ID) == id {
				return v, nil
			}
		}
	}
	return nil, nil
}

func newTestAPI(t *testing.T, source Source) *API {
	t.Helper()

	models := introspect.NewRegistry()
	require.NoError(t, models.RegisterStruct(testPerson{}, "people"))
	require.NoError(t, models.RegisterStruct(testPost{}, "articles"))

	resolver := routes.NewPathResolver("http://example.com/api")
	resolver.Expose("people", "articles")

	encoders := serialization.NewEncoders()
	for _, model := range []any{testPerson{}, testPost{}} {
		require.NoError(t, encoders.Register(model,
			serialization.New(models, resolver, encoders, serialization.FieldSelection{})))
	}

	api, err := New(Config{Models: models, Encoders: encoders, Source: source})
	require.NoError(t, err)
	return api
}

func fixtureSource() *staticSource {
	ada := &testPerson{PersonID: 1, Name: "Ada"}
	grace := &testPerson{PersonID: 2, Name: "Grace"}
	post := &testPost{ID: 10, Title: "Notes", AuthorID: 1, Author: ada}
	ada.Articles = []*testPost{post}
	return &staticSource{data: map[string][]any{
		"people":   {ada, grace},
		"articles": {post},
	}}
}

func get(t *testing.T, api *API, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	api.Routes().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListCollection(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jsonapi.MediaType, w.Header().Get("Content-Type"))

	body := decode(t, w)
	data := body["data"].([]any)
	require.Len(t, data, 2)

	first := data[0].(map[string]any)
	assert.Equal(t, "1", first["id"])
	assert.Equal(t, "people", first["type"])
	assert.Equal(t, "Ada", first["attributes"].(map[string]any)["name"])
	assert.Equal(t, "1.0", body["jsonapi"].(map[string]any)["version"])
}

func TestGetResource(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people/1")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "1", data["id"])
	assert.Equal(t, "http://example.com/api/people/1",
		data["links"].(map[string]any)["self"])

	rels := data["relationships"].(map[string]any)
	articles := rels["articles"].(map[string]any)
	linkage := articles["data"].([]any)
	require.Len(t, linkage, 1)
	assert.Equal(t, map[string]any{"id": "10", "type": "articles"}, linkage[0])
}

func TestGetResourceSparseFieldsets(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people/1?fields[people]=name")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	attrs := data["attributes"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Ada"}, attrs)
	_, hasRels := data["relationships"]
	assert.False(t, hasRels, "unrequested relations are dropped")
}

func TestListSparseFieldsetsPerType(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/articles?fields[articles]=title")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	attrs := data[0].(map[string]any)["attributes"].(map[string]any)
	assert.Equal(t, map[string]any{"title": "Notes"}, attrs)
}

func TestUnknownCollectionIs404(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	for _, target := range []string{"/planets", "/planets/1", "/planets/1/relationships/moons"} {
		w := get(t, api, target)
		require.Equal(t, http.StatusNotFound, w.Code, target)
		errs := decode(t, w)["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "not_found", errs[0].(map[string]any)["code"])
	}
}

func TestUnknownResourceIs404(t *testing.T) {
	api := newTestAPI(t, fixtureSource())
	w := get(t, api, "/people/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationshipEndpointToMany(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people/1/relationships/articles")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, map[string]any{"id": "10", "type": "articles"}, data[0])
}

func TestRelationshipEndpointEmptyToMany(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people/2/relationships/articles")
	require.Equal(t, http.StatusOK, w.Code)

	data, ok := decode(t, w)["data"].([]any)
	require.True(t, ok, "empty to-many linkage must be an array")
	assert.Empty(t, data)
}

func TestRelationshipEndpointNullToOne(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	w := get(t, api, "/people/1/relationships/employer")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["data"])
}

func TestRelationshipEndpointUnknownRelationIs404(t *testing.T) {
	api := newTestAPI(t, fixtureSource())
	w := get(t, api, "/people/1/relationships/pets")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSourceFailureIs500(t *testing.T) {
	api := newTestAPI(t, &staticSource{err: errors.New("backend down")})

	w := get(t, api, "/people")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	errs := decode(t, w)["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "internal_error", errs[0].(map[string]any)["code"])
}

func TestSerializationFailureMapsPerInstance(t *testing.T) {
	// One item in the collection has no registered serializer.
	type orphan struct{ ID int }
	source := fixtureSource()
	source.data["people"] = append(source.data["people"], &orphan{ID: 3})
	api := newTestAPI(t, source)

	w := get(t, api, "/people")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	errs := decode(t, w)["errors"].([]any)
	require.Len(t, errs, 1)
	detail := errs[0].(map[string]any)["detail"].(string)
	assert.Contains(t, detail, "failed to find serializer")
}

func TestContentNegotiation(t *testing.T) {
	api := newTestAPI(t, fixtureSource())

	for _, accept := range []string{"", jsonapi.MediaType, "*/*", "application/*"} {
		w := get(t, api, "/people", "Accept", accept)
		assert.Equal(t, http.StatusOK, w.Code, "Accept=%q", accept)
	}

	w := get(t, api, "/people", "Accept", "text/html")
	require.Equal(t, http.StatusNotAcceptable, w.Code)
	errs := decode(t, w)["errors"].([]any)
	assert.Equal(t, "not_acceptable", errs[0].(map[string]any)["code"])
}
