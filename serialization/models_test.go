package serialization

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/routes"
)

// Test models mirroring a small publishing domain. Person's primary key is
// deliberately not named "id".
type Person struct {
	PersonID int        `restless:"primary,person_id"`
	Name     string     `restless:"attr,name"`
	Articles []*Article `restless:"relation,articles"`
}

type Article struct {
	ID       int     `restless:"primary"`
	Title    string  `restless:"attr,title"`
	AuthorID int     `restless:"fk,author_id"`
	Author   *Person `restless:"relation,author"`
}

type testEnv struct {
	models   *introspect.Registry
	resolver *routes.PathResolver
	encoders *Encoders
}

// newTestEnv registers Person and Article with exposed endpoints and
// filter-free serializers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	models := introspect.NewRegistry()
	require.NoError(t, models.RegisterStruct(Person{}, "people"))
	require.NoError(t, models.RegisterStruct(Article{}, "articles"))

	resolver := routes.NewPathResolver("http://example.com/api")
	resolver.Expose("people", "articles")

	encoders := NewEncoders()
	for _, model := range []any{Person{}, Article{}} {
		require.NoError(t, encoders.Register(model, New(models, resolver, encoders, FieldSelection{})))
	}

	return &testEnv{models: models, resolver: resolver, encoders: encoders}
}

func (e *testEnv) serializer(t *testing.T, selection FieldSelection, opts ...Option) *Serializer {
	t.Helper()
	return New(e.models, e.resolver, e.encoders, selection, opts...)
}

func adaWithArticles() *Person {
	ada := &Person{PersonID: 42, Name: "Ada"}
	ada.Articles = []*Article{
		{ID: 1, Title: "Notes", AuthorID: 42, Author: ada},
		{ID: 2, Title: "Sketch", AuthorID: 42, Author: ada},
	}
	return ada
}
