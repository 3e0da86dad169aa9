package introspect

import (
	"fmt"
	"reflect"
	"strings"

	utilstrings "github.com/restless-go/restless/internal/util/strings"
)

// TagName is the struct tag consulted when describing model fields
const TagName = "restless"

// StructDescriptor is a reflection-backed Descriptor for struct model types.
// Field roles come from `restless` tags:
//
//	ID       int        `restless:"primary"`           // primary key
//	Name     string     `restless:"attr"`              // stored attribute (default)
//	AuthorID int        `restless:"fk,author_id"`      // foreign-key-backed attribute
//	Articles []*Article `restless:"relation,articles"` // declared relation
//
// The second tag element overrides the attribute name; it defaults to the
// snake_case form of the Go field name. Untagged exported fields are stored
// attributes. Hybrid (computed) attributes are declared with WithHybrid and
// resolved to zero-argument methods.
type StructDescriptor struct {
	typ       reflect.Type
	desc      *Description
	fields    map[string]fieldInfo
	relations map[string]relationInfo
	hybrids   map[string]string // attribute name -> method name
}

type fieldInfo struct {
	index []int
}

type relationInfo struct {
	index   []int
	related reflect.Type
	toMany  bool
}

// DescribeOption customizes struct description.
type DescribeOption func(*StructDescriptor) error

// WithHybrid declares computed attributes backed by zero-argument methods.
// The method name is the exported CamelCase form of the attribute name.
func WithHybrid(names ...string) DescribeOption {
	return func(d *StructDescriptor) error {
		ptr := reflect.PtrTo(d.typ)
		for _, name := range names {
			method := utilstrings.ToExportedCamelCase(name)
			m, ok := ptr.MethodByName(method)
			if !ok {
				return fmt.Errorf("%w: %s has no method %s for hybrid attribute %q",
					ErrIntrospection, d.typ, method, name)
			}
			// Receiver counts as the first input.
			if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
				return fmt.Errorf("%w: %s.%s must take no arguments and return one value",
					ErrIntrospection, d.typ, method)
			}
			d.hybrids[name] = method
			d.desc.HybridAttributes = append(d.desc.HybridAttributes, name)
		}
		return nil
	}
}

// DescribeStruct builds a descriptor for a struct model type.
func DescribeStruct(model any, opts ...DescribeOption) (*StructDescriptor, error) {
	t := indirectType(reflect.TypeOf(model))
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct type", ErrIntrospection, model)
	}

	d := &StructDescriptor{
		typ:       t,
		desc:      &Description{},
		fields:    make(map[string]fieldInfo),
		relations: make(map[string]relationInfo),
		hybrids:   make(map[string]string),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get(TagName)
		if tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		kind := parts[0]
		name := ""
		if len(parts) > 1 {
			name = parts[1]
		}
		if name == "" {
			name = utilstrings.ToSnakeCase(f.Name)
		}

		switch kind {
		case "primary":
			if d.desc.PrimaryKey != "" {
				return nil, fmt.Errorf("%w: %s declares more than one primary key", ErrIntrospection, t)
			}
			d.desc.PrimaryKey = name
			d.desc.Attributes = append(d.desc.Attributes, name)
			d.fields[name] = fieldInfo{index: f.Index}
		case "", "attr":
			d.desc.Attributes = append(d.desc.Attributes, name)
			d.fields[name] = fieldInfo{index: f.Index}
		case "fk":
			d.desc.Attributes = append(d.desc.Attributes, name)
			d.desc.ForeignKeys = append(d.desc.ForeignKeys, name)
			d.fields[name] = fieldInfo{index: f.Index}
		case "relation":
			related, toMany, err := relatedModelType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: relation %q on %s: %v", ErrIntrospection, name, t, err)
			}
			d.desc.Relations = append(d.desc.Relations, name)
			d.relations[name] = relationInfo{index: f.Index, related: related, toMany: toMany}
		default:
			return nil, fmt.Errorf("%w: unknown field kind %q on %s.%s", ErrIntrospection, kind, t, f.Name)
		}
	}

	if d.desc.PrimaryKey == "" {
		if _, ok := d.fields["id"]; !ok {
			return nil, fmt.Errorf("%w: %s declares no primary key", ErrIntrospection, t)
		}
		d.desc.PrimaryKey = "id"
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// relatedModelType resolves the model type behind a relation field: the slice
// element for to-many relations, the pointed-at struct for to-one relations.
func relatedModelType(t reflect.Type) (reflect.Type, bool, error) {
	toMany := false
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		toMany = true
		t = t.Elem()
	}
	t = indirectType(t)
	if t.Kind() != reflect.Struct {
		return nil, false, fmt.Errorf("related type %s is not a struct", t)
	}
	return t, toMany, nil
}

// Describe implements Descriptor.
func (d *StructDescriptor) Describe() *Description {
	return d.desc
}

// Value implements Descriptor. Declared attributes resolve through the field
// table, hybrids through their method, and anything else dynamically by field
// or zero-argument method lookup.
func (d *StructDescriptor) Value(instance any, name string) (any, bool) {
	v := reflect.ValueOf(instance)
	sv := reflect.Indirect(v)
	if !sv.IsValid() || sv.Type() != d.typ {
		return nil, false
	}

	if fi, ok := d.fields[name]; ok {
		return sv.FieldByIndex(fi.index).Interface(), true
	}

	if method, ok := d.hybrids[name]; ok {
		return callMethod(v, sv, method)
	}

	// Dynamic resolution for additional attributes.
	if f := sv.FieldByNameFunc(func(n string) bool {
		return utilstrings.ToSnakeCase(n) == name
	}); f.IsValid() && f.CanInterface() {
		return f.Interface(), true
	}
	return callMethod(v, sv, utilstrings.ToExportedCamelCase(name))
}

// callMethod invokes a zero-argument single-return method, preferring the
// pointer receiver method set.
func callMethod(v, sv reflect.Value, name string) (any, bool) {
	m := v.MethodByName(name)
	if !m.IsValid() && sv.CanAddr() {
		m = sv.Addr().MethodByName(name)
	}
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return nil, false
	}
	return m.Call(nil)[0].Interface(), true
}

// RelationValue implements Descriptor.
func (d *StructDescriptor) RelationValue(instance any, name string) (any, bool) {
	ri, ok := d.relations[name]
	if !ok {
		return nil, false
	}
	sv := reflect.Indirect(reflect.ValueOf(instance))
	if !sv.IsValid() || sv.Type() != d.typ {
		return nil, false
	}
	f := sv.FieldByIndex(ri.index)
	if f.Kind() == reflect.Ptr && f.IsNil() {
		return nil, true
	}
	return f.Interface(), true
}

// IsToMany implements Descriptor.
func (d *StructDescriptor) IsToMany(_ any, relation string) bool {
	ri, ok := d.relations[relation]
	return ok && ri.toMany
}

// RelatedType implements Descriptor.
func (d *StructDescriptor) RelatedType(relation string) (reflect.Type, bool) {
	ri, ok := d.relations[relation]
	if !ok {
		return nil, false
	}
	return ri.related, true
}
