package dsl

import (
	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// toJSONSchema projects n into a fresh schema. Refinements that have no JSON
// Schema counterpart (custom predicates) are left out.
func toJSONSchema(n *node) *js.Schema {
	var s *js.Schema
	switch n.kind {
	case KindAny:
		s = &js.Schema{}
	case KindString:
		s = &js.Schema{Type: "string"}
	case KindNumber:
		s = &js.Schema{Type: "number"}
	case KindBool:
		s = &js.Schema{Type: "boolean"}
	case KindDate:
		s = &js.Schema{Type: "string", Format: "date-time"}
	case KindLiteral:
		if n.literal == nil {
			s = &js.Schema{Type: "null"}
		} else {
			s = &js.Schema{Const: n.literal}
		}
	case KindEnum:
		s = &js.Schema{Enum: append([]any(nil), n.options...)}
	case KindOptional:
		s = toJSONSchema(n.inner)
	case KindNullable, KindNullish:
		s = &js.Schema{AnyOf: []*js.Schema{toJSONSchema(n.inner), {Type: "null"}}}
	case KindDefault:
		s = toJSONSchema(n.inner)
		s.Default = n.defaultFn()
	case KindObject:
		s = objectSchema(n)
	case KindArray:
		s = &js.Schema{Type: "array", Items: toJSONSchema(n.elem)}
	case KindTuple:
		items := make([]*js.Schema, len(n.items))
		for i, it := range n.items {
			items[i] = toJSONSchema(it)
		}
		l := len(items)
		s = &js.Schema{Type: "array", PrefixItems: items, Items: false, MinItems: js.IntPtr(l), MaxItems: js.IntPtr(l)}
	case KindUnion:
		s = &js.Schema{AnyOf: schemas(n.candidates)}
	case KindDiscriminatedUnion:
		s = &js.Schema{OneOf: schemas(n.candidates)}
	case KindRecord:
		s = &js.Schema{Type: "object", AdditionalProperties: toJSONSchema(n.value)}
		if n.key.kind != KindString || len(n.key.checks) > 0 {
			s.PropertyNames = toJSONSchema(n.key)
		}
	case KindMap:
		// Only string-keyed maps have a JSON shape.
		s = &js.Schema{Type: "object", AdditionalProperties: toJSONSchema(n.value)}
	default:
		s = &js.Schema{}
	}
	if n.description != "" {
		s.Description = n.description
	}
	for _, c := range n.checks {
		if c.schema != nil {
			c.schema(s)
		}
	}
	return s
}

func objectSchema(n *node) *js.Schema {
	s := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(n.fields))}
	for _, f := range n.fields {
		s.Properties[f.name] = toJSONSchema(f.n)
		if !f.n.acceptsAbsent() {
			s.Required = append(s.Required, f.name)
		}
	}
	if n.unknown == skema.UnknownStrict {
		s.AdditionalProperties = false
	}
	return s
}

func schemas(ns []*node) []*js.Schema {
	out := make([]*js.Schema, len(ns))
	for i, c := range ns {
		out[i] = toJSONSchema(c)
	}
	return out
}
