package serialization

import (
	"reflect"
	"time"

	"github.com/restless-go/restless/introspect"
)

// normalize converts a raw attribute value into its canonical wire form:
// zero-argument callables are invoked first, date/time values become ISO-8601
// text, durations become elapsed seconds, and values of registered model
// types are recursively encoded into resource objects (only the data member
// of the nested document is kept). Anything else passes through for the JSON
// encoder to handle.
func (s *Serializer) normalize(value any, depth int) (any, error) {
	if value == nil {
		return nil, nil
	}
	value = callIfCallable(value)
	if rv := reflect.ValueOf(value); !rv.IsValid() {
		return nil, nil
	} else if k := rv.Kind(); (k == reflect.Ptr || k == reflect.Func) && rv.IsNil() {
		return nil, nil
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.Format(time.RFC3339Nano), nil
	case time.Duration:
		return v.Seconds(), nil
	}

	t := introspect.ModelType(value)
	if t != nil && t.Kind() == reflect.Struct && s.models.IsRegistered(t) {
		if depth >= s.maxDepth {
			return nil, ErrMaxDepthExceeded
		}
		return s.encoderFor(t).resource(value, nil, depth+1)
	}

	return value, nil
}

// encoderFor resolves the registered serializer for a nested model type,
// falling back to a filter-free default when none is registered.
func (s *Serializer) encoderFor(t reflect.Type) *Serializer {
	if s.encoders != nil {
		if enc, err := s.encoders.For(t); err == nil {
			return enc
		}
	}
	return &Serializer{
		models:   s.models,
		urls:     s.urls,
		encoders: s.encoders,
		maxDepth: s.maxDepth,
	}
}

// callIfCallable invokes a zero-argument single-return value, supporting
// computed properties stored as functions.
func callIfCallable(value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Func && !rv.IsNil() &&
		rv.Type().NumIn() == 0 && rv.Type().NumOut() == 1 {
		return rv.Call(nil)[0].Interface()
	}
	return value
}
