package dsl

import (
	"fmt"
)

// Union accepts the first candidate, in order, that validates the input and
// returns that candidate's output. When none matches, a single
// no_union_member_matched issue carries every candidate's issues.
func Union(candidates ...Descriptor) Type[any] {
	if len(candidates) == 0 {
		panic("dsl: Union: no candidates")
	}
	ns := make([]*node, len(candidates))
	for i, c := range candidates {
		ns[i] = mustNode(c, fmt.Sprintf("Union candidate %d", i))
	}
	return Type[any]{&node{kind: KindUnion, candidates: ns}}
}

// DiscriminatedUnion selects the branch whose discriminator field literal
// equals the input's value at field. Every branch must declare field as a
// Literal or an Enum, and no value may select two branches.
func DiscriminatedUnion(field string, branches ...ObjectType) Type[map[string]any] {
	if len(branches) == 0 {
		panic("dsl: DiscriminatedUnion: no branches")
	}
	n := &node{
		kind:          KindDiscriminatedUnion,
		discriminator: field,
		branches:      make(map[any]*node, len(branches)),
	}
	for i, b := range branches {
		bn := mustNode(b, fmt.Sprintf("DiscriminatedUnion branch %d", i))
		fn, ok := bn.field(field)
		if !ok {
			panic(fmt.Sprintf("dsl: DiscriminatedUnion: branch %d has no field %q", i, field))
		}
		var values []any
		switch fn.kind {
		case KindLiteral:
			values = []any{fn.literal}
		case KindEnum:
			values = fn.options
		default:
			panic(fmt.Sprintf("dsl: DiscriminatedUnion: branch %d field %q is %s, want literal or enum", i, field, fn.kind))
		}
		for _, v := range values {
			k, _ := literalKey(v)
			if _, dup := n.branches[k]; dup {
				panic(fmt.Sprintf("dsl: DiscriminatedUnion: duplicate discriminator %s", formatValue(v)))
			}
			n.branches[k] = bn
			n.branchKeys = append(n.branchKeys, v)
		}
		n.candidates = append(n.candidates, bn)
	}
	return Type[map[string]any]{n}
}
