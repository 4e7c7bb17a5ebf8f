package dsl

import (
	"context"
	"fmt"

	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// Descriptor is the untyped view shared by every descriptor. Builders that
// combine descriptors of different output types (Object fields, Tuple, Union)
// accept it.
type Descriptor interface {
	Kind() Kind
	descriptor() *node
}

// Of is implemented by descriptors whose validated output converts to T.
type Of[T any] interface {
	Descriptor
	skema.Schema[T]
}

// Type is an immutable descriptor whose validated output is returned as T by
// Parse. T is a phantom parameter: validation itself works on untyped values.
type Type[T any] struct {
	n *node
}

var _ skema.Schema[string] = Type[string]{}

func (t Type[T]) descriptor() *node { return t.n }

// Kind reports the descriptor variant.
func (t Type[T]) Kind() Kind { return t.n.kind }

// Description returns the text set by Describe.
func (t Type[T]) Description() string { return t.n.description }

// Validate matches v against the descriptor and returns the outcome.
func (t Type[T]) Validate(ctx context.Context, v any) skema.Outcome {
	return validate(ctx, t.n, v)
}

// Parse validates v and converts the normalized output into T.
func (t Type[T]) Parse(ctx context.Context, v any) (T, error) {
	o := t.Validate(ctx, v)
	if !o.OK() {
		var zero T
		return zero, o.Issues
	}
	return convertOutput[T](o.Value)
}

// ParseWithMeta is Parse plus presence metadata for every visited path.
func (t Type[T]) ParseWithMeta(ctx context.Context, v any) (skema.Decoded[T], error) {
	o := t.Validate(skema.WithPresence(ctx, true), v)
	if !o.OK() {
		return skema.Decoded[T]{Presence: o.Presence}, o.Issues
	}
	out, err := convertOutput[T](o.Value)
	return skema.Decoded[T]{Value: out, Presence: o.Presence}, err
}

// JSONSchema projects the descriptor into a draft 2020-12 document.
func (t Type[T]) JSONSchema() (*js.Schema, error) {
	s := toJSONSchema(t.n)
	s.SchemaURI = js.Draft
	return s, nil
}

// Optional accepts an absent value. Inside an object the key is then omitted
// from the output. Parse returns the zero T for an absent input; rebind with
// As[*T] to tell absence apart from a zero value.
func (t Type[T]) Optional() Type[T] { return Type[T]{wrap(KindOptional, t.n)} }

// Nullable accepts an explicit null. Parse maps null to the zero T.
func (t Type[T]) Nullable() Type[T] { return Type[T]{wrap(KindNullable, t.n)} }

// Nullish accepts both an absent value and null.
func (t Type[T]) Nullish() Type[T] { return Type[T]{wrap(KindNullish, t.n)} }

// Default substitutes v when the input is absent and validates it against
// the wrapped descriptor. Pointers to scalars, slices and maps are
// dereferenced first, and a nil one substitutes null.
func (t Type[T]) Default(v T) Type[T] {
	return t.DefaultFunc(func() T { return v })
}

// DefaultFunc is like Default but calls fn for every absent input.
func (t Type[T]) DefaultFunc(fn func() T) Type[T] {
	n := wrap(KindDefault, t.n)
	n.defaultFn = func() any { return fn() }
	return Type[T]{n}
}

// Refine appends a predicate evaluated after the built-in checks. message is
// reported with refinement_failed when fn returns false.
func (t Type[T]) Refine(fn func(T) bool, message string) Type[T] {
	return Type[T]{t.n.withCheck(refineCheck(fn, message))}
}

// Describe attaches a description exported to JSON Schema.
func (t Type[T]) Describe(text string) Type[T] {
	n := t.n.clone()
	n.description = text
	return Type[T]{n}
}

func refineCheck[T any](fn func(T) bool, message string) check {
	return check{
		key:     "refinement_failed",
		message: message,
		test: func(v any) bool {
			tv, err := convertOutput[T](v)
			if err != nil {
				return false
			}
			return fn(tv)
		},
	}
}

// As rebinds the phantom output type of d. The validated output is decoded
// into U (struct fields follow `json` tags) when it is not already a U.
func As[U any](d Descriptor) Type[U] {
	if d == nil || d.descriptor() == nil {
		panic("dsl: As: nil descriptor")
	}
	return Type[U]{d.descriptor()}
}

func mustNode(d Descriptor, op string) *node {
	if d == nil || d.descriptor() == nil {
		panic(fmt.Sprintf("dsl: %s: nil descriptor", op))
	}
	return d.descriptor()
}
