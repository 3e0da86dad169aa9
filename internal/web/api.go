// Package web serves JSON:API documents for registered models over HTTP.
// Persistence lives behind the Source interface; the handlers only resolve
// instances and hand them to the serialization engine.
package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/restless-go/restless/introspect"
	"github.com/restless-go/restless/jsonapi"
	"github.com/restless-go/restless/serialization"
)

// Source supplies model instances to the API.
type Source interface {
	// List returns every instance in a collection, in stable order.
	List(ctx context.Context, collection string) ([]any, error)

	// Get returns one instance by its string primary key, or nil when the
	// instance does not exist.
	Get(ctx context.Context, collection, id string) (any, error)
}

// Config holds API construction dependencies
type Config struct {
	Models   *introspect.Registry
	Encoders *serialization.Encoders
	Source   Source
	Logger   *zap.Logger
}

// API exposes registered models as JSON:API read endpoints.
type API struct {
	models      *introspect.Registry
	encoders    *serialization.Encoders
	batch       *serialization.BatchSerializer
	identifiers *serialization.IdentifierSerializer
	source      Source
	logger      *zap.Logger
}

// New creates the API over a model registry, serializer registry, and source.
func New(cfg Config) (*API, error) {
	if cfg.Models == nil || cfg.Encoders == nil || cfg.Source == nil {
		return nil, fmt.Errorf("models, encoders, and source are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		models:      cfg.Models,
		encoders:    cfg.Encoders,
		batch:       serialization.NewBatchSerializer(cfg.Models, cfg.Encoders),
		identifiers: serialization.NewIdentifierSerializer(cfg.Models),
		source:      cfg.Source,
		logger:      logger,
	}, nil
}

// Routes builds the chi router for the API surface.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(negotiate)
	r.Get("/{collection}", a.handleList)
	r.Get("/{collection}/{id}", a.handleGet)
	r.Get("/{collection}/{id}/relationships/{relation}", a.handleRelationship)
	return r
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if _, ok := a.models.TypeFor(collection); !ok {
		a.renderNotFound(w, fmt.Sprintf("collection %q is not registered", collection))
		return
	}

	instances, err := a.source.List(r.Context(), collection)
	if err != nil {
		a.logger.Error("failed to list collection",
			zap.String("collection", collection),
			zap.Error(err))
		renderErrors(w, http.StatusInternalServerError,
			jsonapi.NewError(http.StatusInternalServerError, "failed to load collection"))
		return
	}

	doc, err := a.batch.SerializeMany(instances, ParseFields(r))
	if err != nil {
		a.renderSerializationFailure(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, doc)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	t, ok := a.models.TypeFor(collection)
	if !ok {
		a.renderNotFound(w, fmt.Sprintf("collection %q is not registered", collection))
		return
	}

	instance, err := a.fetch(w, r, collection, id)
	if err != nil || instance == nil {
		return
	}

	enc, err := a.encoders.For(t)
	if err != nil {
		a.renderSerializationFailure(w, r, err)
		return
	}

	doc, err := enc.Serialize(instance, ParseFields(r)[collection])
	if err != nil {
		a.renderSerializationFailure(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, doc)
}

func (a *API) handleRelationship(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	relation := chi.URLParam(r, "relation")

	t, ok := a.models.TypeFor(collection)
	if !ok {
		a.renderNotFound(w, fmt.Sprintf("collection %q is not registered", collection))
		return
	}
	desc, err := a.models.DescriptorFor(t)
	if err != nil {
		a.renderSerializationFailure(w, r, err)
		return
	}

	instance, err := a.fetch(w, r, collection, id)
	if err != nil || instance == nil {
		return
	}

	value, ok := desc.RelationValue(instance, relation)
	if !ok {
		a.renderNotFound(w, fmt.Sprintf("no relation %q on collection %q", relation, collection))
		return
	}

	var doc *jsonapi.Document
	if desc.IsToMany(instance, relation) {
		doc, err = a.identifiers.SerializeMany(toSlice(value), "")
	} else if value != nil {
		doc, err = a.identifiers.Serialize(value, "")
	} else {
		doc = jsonapi.NewDocument(nil)
	}
	if err != nil {
		a.renderSerializationFailure(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, doc)
}

// fetch loads one instance, rendering the error responses itself. A nil
// instance with nil error means a 404 has already been written.
func (a *API) fetch(w http.ResponseWriter, r *http.Request, collection, id string) (any, error) {
	instance, err := a.source.Get(r.Context(), collection, id)
	if err != nil {
		a.logger.Error("failed to fetch instance",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		renderErrors(w, http.StatusInternalServerError,
			jsonapi.NewError(http.StatusInternalServerError, "failed to load resource"))
		return nil, err
	}
	if instance == nil {
		a.renderNotFound(w, fmt.Sprintf("no resource %q in collection %q", id, collection))
		return nil, nil
	}
	return instance, nil
}

func (a *API) render(w http.ResponseWriter, r *http.Request, status int, doc any) {
	if err := renderDocument(w, status, doc); err != nil {
		a.logger.Error("failed to render document",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		renderErrors(w, http.StatusInternalServerError,
			jsonapi.NewError(http.StatusInternalServerError, "failed to encode response"))
	}
}

func (a *API) renderNotFound(w http.ResponseWriter, detail string) {
	renderErrors(w, http.StatusNotFound, jsonapi.NewError(http.StatusNotFound, detail))
}

// renderSerializationFailure maps engine failures to JSON:API error objects:
// one object per failed instance, each naming the offending instance.
func (a *API) renderSerializationFailure(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("serialization failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))

	status := http.StatusInternalServerError
	switch e := err.(type) {
	case *serialization.MultipleErrors:
		objects := make([]*jsonapi.ErrorObject, 0, len(e.Errors))
		for _, serr := range e.Errors {
			objects = append(objects, jsonapi.NewError(status, failureDetail(serr)))
		}
		renderErrors(w, status, objects...)
	case *serialization.SerializationError:
		renderErrors(w, status, jsonapi.NewError(status, failureDetail(e)))
	default:
		renderErrors(w, status, jsonapi.NewError(status, err.Error()))
	}
}

func failureDetail(e *serialization.SerializationError) string {
	return fmt.Sprintf("failed to serialize instance of type %T: %s", e.Instance, e.Message)
}

// toSlice flattens a to-many relation value into instances.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}
