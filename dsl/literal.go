package dsl

import (
	"fmt"
	"sort"
)

// Literal matches exactly v. Numbers compare by value across numeric types.
func Literal[T comparable](v T) Type[T] {
	if _, ok := literalKey(v); !ok {
		panic(fmt.Sprintf("dsl: Literal: unsupported literal %T", v))
	}
	return Type[T]{&node{kind: KindLiteral, literal: v}}
}

// EnumType matches one of an ordered set of values.
type EnumType[T comparable] struct {
	Type[T]
	values []T
}

// Enum matches one of values, kept in the given order.
func Enum[T comparable](values ...T) EnumType[T] {
	if len(values) == 0 {
		panic("dsl: Enum: no values")
	}
	seen := make(map[any]struct{}, len(values))
	opts := make([]any, 0, len(values))
	for _, v := range values {
		k, ok := literalKey(v)
		if !ok {
			panic(fmt.Sprintf("dsl: Enum: unsupported value %T", v))
		}
		if _, dup := seen[k]; dup {
			panic(fmt.Sprintf("dsl: Enum: duplicate value %v", v))
		}
		seen[k] = struct{}{}
		opts = append(opts, v)
	}
	return EnumType[T]{
		Type:   Type[T]{&node{kind: KindEnum, options: opts}},
		values: append([]T(nil), values...),
	}
}

// NativeEnum builds an enum from a name to value mapping, such as the
// constants of a Go enum type. Options are ordered by name; values shared by
// several names are listed once.
func NativeEnum[T comparable](m map[string]T) EnumType[T] {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]T, 0, len(m))
	seen := make(map[T]struct{}, len(m))
	for _, name := range names {
		v := m[name]
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return Enum(values...)
}

// Options returns the allowed values in order.
func (e EnumType[T]) Options() []T { return append([]T(nil), e.values...) }

// Extract returns an enum restricted to values. Unknown values panic.
func (e EnumType[T]) Extract(values ...T) EnumType[T] {
	for _, v := range values {
		if !e.has(v) {
			panic(fmt.Sprintf("dsl: Extract: %v is not an option", v))
		}
	}
	return Enum(values...)
}

// Exclude returns an enum without values.
func (e EnumType[T]) Exclude(values ...T) EnumType[T] {
	drop := make(map[T]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}
	var keep []T
	for _, v := range e.values {
		if _, ok := drop[v]; !ok {
			keep = append(keep, v)
		}
	}
	return Enum(keep...)
}

func (e EnumType[T]) has(v T) bool {
	for _, o := range e.values {
		if o == v {
			return true
		}
	}
	return false
}
