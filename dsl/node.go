package dsl

import (
	"slices"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	js "github.com/reoring/skema/jsonschema"
)

// Kind identifies the variant of a descriptor.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindLiteral
	KindEnum
	KindOptional
	KindNullable
	KindNullish
	KindDefault
	KindObject
	KindArray
	KindTuple
	KindUnion
	KindDiscriminatedUnion
	KindRecord
	KindMap
)

var kindNames = [...]string{
	KindAny:                "any",
	KindString:             "string",
	KindNumber:             "number",
	KindBool:               "boolean",
	KindDate:               "date",
	KindLiteral:            "literal",
	KindEnum:               "enum",
	KindOptional:           "optional",
	KindNullable:           "nullable",
	KindNullish:            "nullish",
	KindDefault:            "default",
	KindObject:             "object",
	KindArray:              "array",
	KindTuple:              "tuple",
	KindUnion:              "union",
	KindDiscriminatedUnion: "discriminated_union",
	KindRecord:             "record",
	KindMap:                "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// node is the tagged variant behind every descriptor. Nodes are never
// mutated once a builder has returned them; builders clone first.
type node struct {
	kind        Kind
	description string
	checks      []check
	coerce      bool

	// KindLiteral / KindEnum
	literal any
	options []any

	// KindOptional / KindNullable / KindNullish / KindDefault
	inner     *node
	defaultFn func() any

	// KindObject
	fields     []field
	fieldIndex map[string]int
	unknown    skema.UnknownPolicy
	rules      []Rule

	// KindArray / KindTuple
	elem  *node
	items []*node

	// KindUnion / KindDiscriminatedUnion
	candidates    []*node
	discriminator string
	branches      map[any]*node
	branchKeys    []any

	// KindRecord / KindMap
	key, value *node
}

type field struct {
	name string
	n    *node
}

// check is one refinement. Checks run in declaration order and stop at the
// first failure.
type check struct {
	key     string            // i18n message key
	params  map[string]string // placeholder values for the message
	code    string            // issue code; refinement_failed unless set
	message string            // caller supplied message, overrides key
	// structural checks (array lengths) also run when elements failed.
	structural bool
	test       func(v any) bool
	schema     func(*js.Schema)
}

func (c check) issue(path skema.Path) skema.Issue {
	msg := c.message
	if msg == "" {
		msg = i18n.T(c.key, c.params)
	}
	code := c.code
	if code == "" {
		code = skema.CodeRefinementFailed
	}
	var params map[string]any
	if len(c.params) > 0 {
		params = make(map[string]any, len(c.params))
		for k, v := range c.params {
			params[k] = v
		}
	}
	return skema.Issue{Path: path, Code: code, Message: msg, Params: params}
}

func (n *node) clone() *node {
	c := *n
	c.checks = slices.Clone(n.checks)
	c.rules = slices.Clone(n.rules)
	c.fields = slices.Clone(n.fields)
	c.items = slices.Clone(n.items)
	c.candidates = slices.Clone(n.candidates)
	c.options = slices.Clone(n.options)
	return &c
}

// withCheck returns a copy of n with c appended.
func (n *node) withCheck(c check) *node {
	out := n.clone()
	out.checks = append(out.checks, c)
	return out
}

// setFields installs fields and rebuilds the name index.
func (n *node) setFields(fs []field) {
	n.fields = fs
	n.fieldIndex = make(map[string]int, len(fs))
	for i, f := range fs {
		n.fieldIndex[f.name] = i
	}
}

func (n *node) field(name string) (*node, bool) {
	i, ok := n.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return n.fields[i].n, true
}

// acceptsAbsent reports whether a missing object key is valid for n without
// substitution, i.e. the field is not listed as required.
func (n *node) acceptsAbsent() bool {
	switch n.kind {
	case KindOptional, KindNullish, KindDefault, KindAny:
		return true
	case KindUnion:
		for _, c := range n.candidates {
			if c.acceptsAbsent() {
				return true
			}
		}
	}
	return false
}

func wrap(kind Kind, inner *node) *node { return &node{kind: kind, inner: inner} }

// optional wraps n in Optional unless it already tolerates absence.
func optional(n *node) *node {
	if n.kind == KindOptional || n.kind == KindNullish {
		return n
	}
	return wrap(KindOptional, n)
}

func firstMessage(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}
