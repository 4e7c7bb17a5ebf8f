package dsl

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record matches an object with arbitrary string keys whose values all match
// value. Entries are visited in sorted key order, or input order for ordered
// maps.
func Record[V any](value Of[V]) Type[map[string]V] {
	return RecordOf(String(), value)
}

// RecordOf is Record with a key descriptor. A failing key yields
// record_key_invalid; a failing value yields record_value_invalid at the
// entry's path.
func RecordOf[V any](key Of[string], value Of[V]) Type[map[string]V] {
	return Type[map[string]V]{&node{
		kind:  KindRecord,
		key:   mustNode(key, "Record key"),
		value: mustNode(value, "Record value"),
	}}
}

// Map matches a map with arbitrary keys. Inputs are
// *orderedmap.OrderedMap[any, any] (visited in insertion order) or any Go
// map. The output is always an ordered map.
func Map(key, value Descriptor) Type[*orderedmap.OrderedMap[any, any]] {
	return Type[*orderedmap.OrderedMap[any, any]]{&node{
		kind:  KindMap,
		key:   mustNode(key, "Map key"),
		value: mustNode(value, "Map value"),
	}}
}
