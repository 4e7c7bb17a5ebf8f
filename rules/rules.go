// Package rules provides reusable cross-field object rules for
// dsl.ObjectType.Superrefine.
//
// Paths are JSON Pointers relative to the object the rule is attached to,
// e.g. "/status" or "/items/0/sku".
package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/reoring/skema"
	"github.com/reoring/skema/dsl"
	"github.com/reoring/skema/i18n"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path skema.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at pointer with want.
// A missing value never satisfies the condition.
func If(pointer string, op Op, want any) Conditional {
	return Conditional{path: skema.ParsePointer(pointer), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against obj.
func (c Conditional) Holds(obj map[string]any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(obj) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(obj) {
				return true
			}
		}
		return false
	}
	cur, ok := lookup(obj, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then returns a rule that runs rules only when the condition holds.
func (c Conditional) Then(rules ...dsl.Rule) dsl.Rule {
	return func(ctx context.Context, obj map[string]any, at skema.Path) skema.Issues {
		if !c.Holds(obj) {
			return nil
		}
		return And(rules...)(ctx, obj, at)
	}
}

// Required reports required_but_missing when the value at pointer is absent
// or null.
func Required(pointer string) dsl.Rule {
	p := skema.ParsePointer(pointer)
	return func(_ context.Context, obj map[string]any, at skema.Path) skema.Issues {
		if v, ok := lookup(obj, p); ok && v != nil {
			return nil
		}
		return skema.Issues{join(at, p).Issue(skema.CodeRequiredButMissing,
			i18n.T(skema.CodeRequiredButMissing, nil))}
	}
}

// Forbidden reports refinement_failed when a value is present at pointer.
func Forbidden(pointer, message string) dsl.Rule {
	p := skema.ParsePointer(pointer)
	return func(_ context.Context, obj map[string]any, at skema.Path) skema.Issues {
		if v, ok := lookup(obj, p); !ok || v == nil {
			return nil
		}
		return skema.Issues{join(at, p).Issue(skema.CodeRefinementFailed, message)}
	}
}

// AtLeastOne ensures the collection at pointer has at least 1 element.
// Values that are not collections are left to the field descriptors.
func AtLeastOne(pointer string) dsl.Rule {
	p := skema.ParsePointer(pointer)
	return func(_ context.Context, obj map[string]any, at skema.Path) skema.Issues {
		v, ok := lookup(obj, p)
		if !ok {
			return nil
		}
		if s, ok := v.([]any); ok && len(s) == 0 {
			return skema.Issues{join(at, p).Issue(skema.CodeArrayLengthConstraint,
				i18n.T("array.nonempty", nil), "min", 1)}
		}
		return nil
	}
}

// UniqueBy ensures elements of the collection at pointer have distinct values
// at keyPointer, which is relative to each element. Keys are compared by
// their fmt rendering, so 1 and "1" collide.
func UniqueBy(pointer, keyPointer string) dsl.Rule {
	cp := skema.ParsePointer(pointer)
	kp := skema.ParsePointer(keyPointer)
	return func(ctx context.Context, obj map[string]any, at skema.Path) skema.Issues {
		v, ok := lookup(obj, cp)
		if !ok {
			return nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var out skema.Issues
		for i, elem := range items {
			kv, ok := lookupIn(elem, kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			j, dup := seen[key]
			if !dup {
				seen[key] = i
				continue
			}
			path := join(join(at, cp).Index(i), kp)
			out = append(out, path.Issue(skema.CodeDuplicateValue,
				i18n.T(skema.CodeDuplicateValue, map[string]string{"key": strconv.Quote(key)}),
				"first", j, "dup", i, "key", key))
			if skema.IsFailFast(ctx) {
				return out
			}
		}
		return out
	}
}

// And executes all rules and concatenates their issues. Under fail-fast it
// stops at the first rule that reports.
func And(rules ...dsl.Rule) dsl.Rule {
	return func(ctx context.Context, obj map[string]any, at skema.Path) skema.Issues {
		var out skema.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			if iss := r(ctx, obj, at); len(iss) > 0 {
				out = append(out, iss...)
				if skema.IsFailFast(ctx) {
					return out
				}
			}
		}
		return out
	}
}

// Or succeeds if any rule returns no issues. When all fail it returns the
// branch with the fewest issues.
func Or(rules ...dsl.Rule) dsl.Rule {
	return func(ctx context.Context, obj map[string]any, at skema.Path) skema.Issues {
		var best skema.Issues
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(ctx, obj, at)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}

// ------- helpers -------

func join(base, rel skema.Path) skema.Path {
	out := make(skema.Path, 0, len(base)+len(rel))
	return append(append(out, base...), rel...)
}

func lookup(obj map[string]any, p skema.Path) (any, bool) {
	return lookupIn(obj, p)
}

// lookupIn walks plain maps and slices. ParsePointer turns numeric segments
// into ints, which still address map keys.
func lookupIn(v any, p skema.Path) (any, bool) {
	cur := v
	for _, seg := range p {
		switch c := cur.(type) {
		case map[string]any:
			key, ok := seg.(string)
			if !ok {
				key = fmt.Sprint(seg)
			}
			next, ok := c[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, ok := seg.(int)
			if !ok || i < 0 || i >= len(c) {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func compare(cur any, op Op, want any) bool {
	a, aNum := number(cur)
	b, bNum := number(want)
	switch op {
	case Eq:
		if aNum && bNum {
			return a == b
		}
		return reflect.DeepEqual(cur, want)
	case Ne:
		if aNum && bNum {
			return a != b
		}
		return !reflect.DeepEqual(cur, want)
	}
	if !aNum || !bNum {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
