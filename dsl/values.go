package dsl

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/skema"
)

// objectView is a read-only view over the accepted object inputs:
// map[string]any, *orderedmap.OrderedMap[string, any] and any other map with
// string keys.
type objectView struct {
	m       map[string]any
	om      *orderedmap.OrderedMap[string, any]
	rv      reflect.Value
	ordered bool
}

func asObject(v any) (objectView, bool) {
	switch x := v.(type) {
	case map[string]any:
		return objectView{m: x}, true
	case *orderedmap.OrderedMap[string, any]:
		if x == nil {
			return objectView{}, false
		}
		return objectView{om: x, ordered: true}, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil() {
		return objectView{rv: rv}, true
	}
	return objectView{}, false
}

func (o objectView) get(k string) (any, bool) {
	switch {
	case o.om != nil:
		return o.om.Get(k)
	case o.m != nil:
		v, ok := o.m[k]
		return v, ok
	}
	mv := o.rv.MapIndex(reflect.ValueOf(k).Convert(o.rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

// keys returns the keys in input order for ordered maps and sorted order
// otherwise.
func (o objectView) keys() []string {
	if o.om != nil {
		out := make([]string, 0, o.om.Len())
		for p := o.om.Oldest(); p != nil; p = p.Next() {
			out = append(out, p.Key)
		}
		return out
	}
	var out []string
	if o.m != nil {
		out = make([]string, 0, len(o.m))
		for k := range o.m {
			out = append(out, k)
		}
	} else {
		out = make([]string, 0, o.rv.Len())
		for _, k := range o.rv.MapKeys() {
			out = append(out, k.String())
		}
	}
	sort.Strings(out)
	return out
}

// objectOut accumulates validated entries, mirroring the input's orderedness.
type objectOut struct {
	m  map[string]any
	om *orderedmap.OrderedMap[string, any]
}

func newObjectOut(ordered bool, size int) objectOut {
	if ordered {
		return objectOut{om: orderedmap.New[string, any]()}
	}
	return objectOut{m: make(map[string]any, size)}
}

func (o objectOut) set(k string, v any) {
	if o.om != nil {
		o.om.Set(k, v)
		return
	}
	o.m[k] = v
}

func (o objectOut) value() any {
	if o.om != nil {
		return o.om
	}
	return o.m
}

// asSlice accepts []any and any other slice or array.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, s != nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// mapEntry is one key/value pair of a Map input.
type mapEntry struct {
	k, v any
}

// asEntries accepts *orderedmap.OrderedMap[any, any] (insertion order) and any
// Go map (keys sorted by their printed form).
func asEntries(v any) ([]mapEntry, bool) {
	switch x := v.(type) {
	case *orderedmap.OrderedMap[any, any]:
		if x == nil {
			return nil, false
		}
		out := make([]mapEntry, 0, x.Len())
		for p := x.Oldest(); p != nil; p = p.Next() {
			out = append(out, mapEntry{p.Key, p.Value})
		}
		return out, true
	case *orderedmap.OrderedMap[string, any]:
		if x == nil {
			return nil, false
		}
		out := make([]mapEntry, 0, x.Len())
		for p := x.Oldest(); p != nil; p = p.Next() {
			out = append(out, mapEntry{p.Key, p.Value})
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() {
		return nil, false
	}
	out := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, mapEntry{iter.Key().Interface(), iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return fmt.Sprint(out[i].k) < fmt.Sprint(out[j].k) })
	return out, true
}

// toFloat reports the numeric value of v for Go numeric kinds and json.Number.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// typeName names the runtime type of v for type_mismatch messages.
func typeName(v any) string {
	if skema.IsUndefined(v) {
		return "undefined"
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	case json.Number:
		if _, err := x.Float64(); err != nil {
			return "string"
		}
		return "number"
	case *orderedmap.OrderedMap[string, any]:
		return "object"
	case *orderedmap.OrderedMap[any, any]:
		return "map"
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return "nan"
		}
		return "number"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		if reflect.TypeOf(v).Key().Kind() == reflect.String {
			return "object"
		}
		return "map"
	}
	return fmt.Sprintf("%T", v)
}

// literalKey normalizes scalars so that equal literals compare equal across
// numeric representations. ok is false for values that cannot be literals.
func literalKey(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case string, bool:
		return x, true
	}
	if f, ok := toFloat(v); ok {
		return f, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	}
	return nil, false
}

func literalEqual(a, b any) bool {
	ka, ok := literalKey(a)
	if !ok {
		return false
	}
	kb, ok := literalKey(b)
	if !ok {
		return false
	}
	return ka == kb
}

// formatValue renders a literal for messages: strings quoted, others as printed.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case float64:
		return formatNumber(x)
	}
	return fmt.Sprint(v)
}

func formatValues(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, " | ")
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
