package dsl

import (
	"context"
	"fmt"

	"github.com/reoring/skema"
)

// Field pairs a name with a descriptor for Object and Extend.
type Field struct {
	Name string
	Desc Descriptor
}

// F is shorthand for Field{name, d}.
func F(name string, d Descriptor) Field { return Field{Name: name, Desc: d} }

// ObjectType describes an object with declared fields in insertion order and
// an unknown-key policy (strip by default).
//
// Inputs may be map[string]any, *orderedmap.OrderedMap[string, any] or any
// other map with string keys. The output is a map[string]any, or an ordered
// map holding the declared fields followed by passthrough keys in input order
// when the input was ordered.
type ObjectType struct{ Type[map[string]any] }

// Object returns an object descriptor with the given fields. Duplicate names
// panic.
func Object(fields ...Field) ObjectType {
	fs := make([]field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("dsl: Object: duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		fs = append(fs, field{name: f.Name, n: mustNode(f.Desc, "Object field "+f.Name)})
	}
	n := &node{kind: KindObject}
	n.setFields(fs)
	return ObjectType{Type[map[string]any]{n}}
}

func (o ObjectType) with(fs []field, policy skema.UnknownPolicy) ObjectType {
	n := o.n.clone()
	n.setFields(fs)
	n.unknown = policy
	return ObjectType{Type[map[string]any]{n}}
}

// Keys returns the declared field names in order.
func (o ObjectType) Keys() []string {
	out := make([]string, len(o.n.fields))
	for i, f := range o.n.fields {
		out[i] = f.name
	}
	return out
}

// Shape returns the descriptor of a declared field.
func (o ObjectType) Shape(name string) (Type[any], bool) {
	n, ok := o.n.field(name)
	if !ok {
		return Type[any]{}, false
	}
	return Type[any]{n}, true
}

// Policy reports the unknown-key policy.
func (o ObjectType) Policy() skema.UnknownPolicy { return o.n.unknown }

// Strict rejects unknown keys with one unrecognized_key issue each.
func (o ObjectType) Strict() ObjectType { return o.with(o.n.fields, skema.UnknownStrict) }

// Passthrough copies unknown keys into the output unchanged.
func (o ObjectType) Passthrough() ObjectType { return o.with(o.n.fields, skema.UnknownPassthrough) }

// Strip drops unknown keys from the output.
func (o ObjectType) Strip() ObjectType { return o.with(o.n.fields, skema.UnknownStrip) }

// Pick keeps only the named fields, in declaration order. Unknown names panic.
func (o ObjectType) Pick(names ...string) ObjectType {
	keep := o.nameSet("Pick", names)
	var fs []field
	for _, f := range o.n.fields {
		if _, ok := keep[f.name]; ok {
			fs = append(fs, f)
		}
	}
	return o.with(fs, o.n.unknown)
}

// Omit drops the named fields. Unknown names panic.
func (o ObjectType) Omit(names ...string) ObjectType {
	drop := o.nameSet("Omit", names)
	var fs []field
	for _, f := range o.n.fields {
		if _, ok := drop[f.name]; !ok {
			fs = append(fs, f)
		}
	}
	return o.with(fs, o.n.unknown)
}

func (o ObjectType) nameSet(op string, names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := o.n.fieldIndex[name]; !ok {
			panic(fmt.Sprintf("dsl: %s: unknown field %q", op, name))
		}
		set[name] = struct{}{}
	}
	return set
}

// Partial makes every direct field optional. Nested objects are unchanged.
func (o ObjectType) Partial() ObjectType {
	fs := make([]field, len(o.n.fields))
	for i, f := range o.n.fields {
		fs[i] = field{name: f.name, n: optional(f.n)}
	}
	return o.with(fs, o.n.unknown)
}

// DeepPartial makes every field optional, recursing into nested objects,
// arrays, tuples and wrappers.
func (o ObjectType) DeepPartial() ObjectType {
	return ObjectType{Type[map[string]any]{deepPartial(o.n)}}
}

func deepPartial(n *node) *node {
	switch n.kind {
	case KindObject:
		fs := make([]field, len(n.fields))
		for i, f := range n.fields {
			fs[i] = field{name: f.name, n: optional(deepPartial(f.n))}
		}
		c := n.clone()
		c.setFields(fs)
		return c
	case KindArray:
		c := n.clone()
		c.elem = deepPartial(n.elem)
		return c
	case KindTuple:
		c := n.clone()
		for i, it := range n.items {
			c.items[i] = deepPartial(it)
		}
		return c
	case KindOptional, KindNullable, KindNullish, KindDefault:
		c := n.clone()
		c.inner = deepPartial(n.inner)
		return c
	}
	return n
}

// Extend adds fields. A field whose name already exists replaces the original
// in its original position.
func (o ObjectType) Extend(fields ...Field) ObjectType {
	fs := append([]field(nil), o.n.fields...)
	for _, f := range fields {
		fs = upsert(fs, field{name: f.Name, n: mustNode(f.Desc, "Extend field "+f.Name)})
	}
	return o.with(fs, o.n.unknown)
}

// Merge combines o with other. other's fields win on name collision and its
// unknown-key policy applies to the result.
func (o ObjectType) Merge(other ObjectType) ObjectType {
	fs := append([]field(nil), o.n.fields...)
	for _, f := range other.n.fields {
		fs = upsert(fs, f)
	}
	return o.with(fs, other.n.unknown)
}

func upsert(fs []field, f field) []field {
	for i := range fs {
		if fs[i].name == f.name {
			fs[i] = f
			return fs
		}
	}
	return append(fs, f)
}

// Refine appends an object-level predicate evaluated after all fields
// validated.
func (o ObjectType) Refine(fn func(map[string]any) bool, message string) ObjectType {
	return ObjectType{Type[map[string]any]{o.n.withCheck(refineCheck(fn, message))}}
}

// Rule is an object-level check that may report several issues. at is the
// object's own path; issues should be placed relative to it.
type Rule func(ctx context.Context, obj map[string]any, at skema.Path) skema.Issues

// Superrefine appends rules evaluated after the fields and refinements pass.
// Unlike Refine the rules choose their own issue paths and codes.
func (o ObjectType) Superrefine(rules ...Rule) ObjectType {
	n := o.n.clone()
	for _, r := range rules {
		if r == nil {
			panic("dsl: Superrefine with nil rule")
		}
		n.rules = append(n.rules, r)
	}
	return ObjectType{Type[map[string]any]{n}}
}

// Describe attaches a description exported to JSON Schema.
func (o ObjectType) Describe(text string) ObjectType {
	return ObjectType{o.Type.Describe(text)}
}
