package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restless-go/restless/internal/web"
	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/routes"
	"github.com/restless-go/restless/serialization"
)

// Person is a demo model whose primary key is not named "id", so its encoded
// resources duplicate person_id into the id member.
type Person struct {
	PersonID int        `restless:"primary,person_id"`
	Name     string     `restless:"attr,name"`
	Birthday time.Time  `restless:"attr,birthday"`
	Articles []*Article `restless:"relation,articles"`
}

// DisplayName backs the hybrid display_name attribute.
func (p *Person) DisplayName() string {
	return fmt.Sprintf("%s (#%d)", p.Name, p.PersonID)
}

// Article is a demo model with a foreign-key attribute and a to-one relation
// back to its author.
type Article struct {
	ID       int           `restless:"primary"`
	Title    string        `restless:"attr,title"`
	ReadTime time.Duration `restless:"attr,read_time"`
	AuthorID int           `restless:"fk,author_id"`
	Author   *Person       `restless:"relation,author"`
}

// Tag is a demo model with a UUID primary key. Its collection is registered
// but never exposed through the resolver, so encoded tags carry no self link.
type Tag struct {
	ID   uuid.UUID `restless:"primary"`
	Name string    `restless:"attr,name"`
}

// buildDemoAPI wires the sample dataset into a servable API and returns the
// exposed collection names for the startup banner.
func buildDemoAPI(baseURL string, logger *zap.Logger) (*web.API, []string, error) {
	models := introspect.NewRegistry()
	if err := models.RegisterStruct(Person{}, "people", introspect.WithHybrid("display_name")); err != nil {
		return nil, nil, err
	}
	if err := models.RegisterStruct(Article{}, "articles"); err != nil {
		return nil, nil, err
	}
	if err := models.RegisterStruct(Tag{}, "tags"); err != nil {
		return nil, nil, err
	}

	resolver := routes.NewPathResolver(baseURL + "/api")
	resolver.Expose("people", "articles")

	encoders := serialization.NewEncoders()
	for _, model := range []any{Person{}, Article{}, Tag{}} {
		s := serialization.New(models, resolver, encoders, serialization.FieldSelection{})
		if err := encoders.Register(model, s); err != nil {
			return nil, nil, err
		}
	}

	source, err := newMemorySource(models, demoData())
	if err != nil {
		return nil, nil, err
	}

	api, err := web.New(web.Config{
		Models:   models,
		Encoders: encoders,
		Source:   source,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return api, models.Collections(), nil
}

func demoData() map[string][]any {
	ada := &Person{
		PersonID: 1,
		Name:     "Ada",
		Birthday: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
	}
	grace := &Person{
		PersonID: 2,
		Name:     "Grace",
		Birthday: time.Date(1906, time.December, 9, 0, 0, 0, 0, time.UTC),
	}

	notes := &Article{ID: 1, Title: "Notes on the Analytical Engine", ReadTime: 42 * time.Minute, AuthorID: 1, Author: ada}
	flowmatic := &Article{ID: 2, Title: "FLOW-MATIC", ReadTime: 25 * time.Minute, AuthorID: 2, Author: grace}
	compiling := &Article{ID: 3, Title: "The Education of a Computer", ReadTime: 30 * time.Minute, AuthorID: 2, Author: grace}

	ada.Articles = []*Article{notes}
	grace.Articles = []*Article{flowmatic, compiling}

	return map[string][]any{
		"people":   {ada, grace},
		"articles": {notes, flowmatic, compiling},
		"tags": {
			&Tag{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Name: "history"},
			&Tag{ID: uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8"), Name: "compilers"},
		},
	}
}

// memorySource is an in-memory web.Source indexed by collection and string
// primary key.
type memorySource struct {
	lists map[string][]any
	byID  map[string]map[string]any
}

func newMemorySource(models *introspect.Registry, data map[string][]any) (*memorySource, error) {
	s := &memorySource{
		lists: data,
		byID:  make(map[string]map[string]any, len(data)),
	}
	for collection, instances := range data {
		t, ok := models.TypeFor(collection)
		if !ok {
			return nil, fmt.Errorf("collection %q is not registered", collection)
		}
		desc, err := models.DescriptorFor(t)
		if err != nil {
			return nil, err
		}
		pk := desc.Describe().PrimaryKey
		index := make(map[string]any, len(instances))
		for _, instance := range instances {
			raw, ok := desc.Value(instance, pk)
			if !ok {
				return nil, fmt.Errorf("no primary key on %T", instance)
			}
			index[serialization.CoerceID(raw)] = instance
		}
		s.byID[collection] = index
	}
	return s, nil
}

// List implements web.Source.
func (s *memorySource) List(_ context.Context, collection string) ([]any, error) {
	return s.lists[collection], nil
}

// Get implements web.Source.
func (s *memorySource) Get(_ context.Context, collection, id string) (any, error) {
	return s.byID[collection][id], nil
}
