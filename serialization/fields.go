package serialization

import (
	"strings"

	"github.com/restless-go/restless/introspect"
)

// reservedPrefix marks internal attribute names that are never emitted.
const reservedPrefix = "_"

// fieldBlacklist lists attribute names which should definitely not be
// considered user attributes, regardless of how a model declares them.
var fieldBlacklist = map[string]struct{}{
	"table_name": {},
}

// FieldSelection is the immutable field configuration owned by one
// Serializer. It is set at construction and reused across calls.
type FieldSelection struct {
	// Only is an allow-list of attribute and relation names to emit. The id
	// and type members can never be filtered out. A nil slice means
	// unrestricted; an empty non-nil slice restricts output to id and type.
	Only []string

	// Exclude lists attribute and relation names to drop. Only and Exclude
	// must not both be set; behavior is undefined if they are.
	Exclude []string

	// AdditionalAttributes names attributes resolved dynamically on the
	// instance, not necessarily declared on the model.
	AdditionalAttributes []string
}

// selectAttributes computes the attribute names to emit for one call: the
// candidate set (declared + hybrid + additional attributes, minus foreign
// keys, reserved names, and blacklisted names) run through the three-filter
// pipeline.
func selectAttributes(shape *introspect.Description, selection FieldSelection, only []string) []string {
	candidates := make([]string, 0,
		len(shape.Attributes)+len(shape.HybridAttributes)+len(selection.AdditionalAttributes))
	candidates = append(candidates, shape.Attributes...)
	candidates = append(candidates, shape.HybridAttributes...)
	candidates = append(candidates, selection.AdditionalAttributes...)

	foreign := nameSet(shape.ForeignKeys)

	filtered := filterFields(candidates, selection, only)
	out := filtered[:0]
	for _, name := range filtered {
		if _, isForeign := foreign[name]; isForeign {
			continue
		}
		if _, banned := fieldBlacklist[name]; banned {
			continue
		}
		if strings.HasPrefix(name, reservedPrefix) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// selectRelations runs the relation names through the identical three-filter
// pipeline, independently from attributes.
func selectRelations(shape *introspect.Description, selection FieldSelection, only []string) []string {
	return filterFields(shape.Relations, selection, only)
}

// filterFields applies constructor only ∩ per-call only, minus constructor
// exclude. Both only filters are unioned with {id, type} before intersecting,
// so id and type can never be filtered out. The two only filters compose as
// an AND: the per-call filter can narrow, never widen, what the constructor
// selection permits. Input order is preserved and duplicates dropped.
func filterFields(names []string, selection FieldSelection, only []string) []string {
	ctorOnly := allowSet(selection.Only)
	callOnly := allowSet(only)
	exclude := nameSet(selection.Exclude)

	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if ctorOnly != nil {
			if _, ok := ctorOnly[name]; !ok {
				continue
			}
		}
		if callOnly != nil {
			if _, ok := callOnly[name]; !ok {
				continue
			}
		}
		if _, ok := exclude[name]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// selfLinkSelected reports whether the self link survives the only filters.
// Exclude is deliberately not consulted, matching the attribute pipeline's
// treatment of id and type.
func selfLinkSelected(selection FieldSelection, only []string) bool {
	if selection.Only != nil && !containsName(selection.Only, "self") {
		return false
	}
	if only != nil && !containsName(only, "self") {
		return false
	}
	return true
}

// allowSet builds the membership set for an only filter, always admitting id
// and type. A nil filter stays nil, meaning unrestricted.
func allowSet(names []string) map[string]struct{} {
	if names == nil {
		return nil
	}
	set := nameSet(names)
	set["id"] = struct{}{}
	set["type"] = struct{}{}
	return set
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func containsName(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}
