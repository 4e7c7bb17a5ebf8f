package dsl

import (
	"fmt"
	"strconv"

	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// ArrayType describes a homogeneous sequence. Length checks are reported
// even when elements failed.
type ArrayType[E any] struct{ Type[[]E] }

// Array returns an array descriptor whose elements match elem.
func Array[E any](elem Of[E]) ArrayType[E] {
	return ArrayType[E]{Type[[]E]{&node{kind: KindArray, elem: mustNode(elem, "Array")}}}
}

// ArrayOf is Array for an untyped element descriptor.
func ArrayOf(elem Descriptor) ArrayType[any] {
	return ArrayType[any]{Type[[]any]{&node{kind: KindArray, elem: mustNode(elem, "ArrayOf")}}}
}

// Element returns the element descriptor.
func (a ArrayType[E]) Element() Type[E] { return Type[E]{a.n.elem} }

func (a ArrayType[E]) length(key, param string, n int, msg []string, test func(int) bool, schema func(*js.Schema)) ArrayType[E] {
	if n < 0 {
		panic(fmt.Sprintf("dsl: Array: negative length %d", n))
	}
	return ArrayType[E]{Type[[]E]{a.n.withCheck(check{
		key:        key,
		params:     map[string]string{param: strconv.Itoa(n)},
		code:       skema.CodeArrayLengthConstraint,
		message:    firstMessage(msg),
		structural: true,
		schema:     schema,
		test: func(v any) bool {
			s, _ := v.([]any)
			return test(len(s))
		},
	})}}
}

// Min requires at least n elements.
func (a ArrayType[E]) Min(n int, msg ...string) ArrayType[E] {
	return a.length("array.min", "min", n, msg, func(l int) bool { return l >= n },
		func(o *js.Schema) { o.MinItems = js.IntPtr(n) })
}

// Max allows at most n elements.
func (a ArrayType[E]) Max(n int, msg ...string) ArrayType[E] {
	return a.length("array.max", "max", n, msg, func(l int) bool { return l <= n },
		func(o *js.Schema) { o.MaxItems = js.IntPtr(n) })
}

// Length requires exactly n elements.
func (a ArrayType[E]) Length(n int, msg ...string) ArrayType[E] {
	return a.length("array.length", "length", n, msg, func(l int) bool { return l == n },
		func(o *js.Schema) { o.MinItems, o.MaxItems = js.IntPtr(n), js.IntPtr(n) })
}

// NonEmpty is Min(1) with its own message.
func (a ArrayType[E]) NonEmpty(msg ...string) ArrayType[E] {
	return a.length("array.nonempty", "min", 1, msg, func(l int) bool { return l >= 1 },
		func(o *js.Schema) { o.MinItems = js.IntPtr(1) })
}

// Refine appends a predicate over the decoded elements.
func (a ArrayType[E]) Refine(fn func([]E) bool, message string) ArrayType[E] {
	return ArrayType[E]{a.Type.Refine(fn, message)}
}

// Describe attaches a description exported to JSON Schema.
func (a ArrayType[E]) Describe(text string) ArrayType[E] {
	return ArrayType[E]{a.Type.Describe(text)}
}

// Tuple matches a fixed-length sequence, position i against items[i]. The
// output is a []any of the validated items.
func Tuple(items ...Descriptor) Type[[]any] {
	ns := make([]*node, len(items))
	for i, it := range items {
		ns[i] = mustNode(it, "Tuple item "+strconv.Itoa(i))
	}
	return Type[[]any]{&node{kind: KindTuple, items: ns}}
}
