package dsl

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/skema"
)

// convertOutput turns a normalized output into T. Values whose plain form
// already is a T are returned as is; everything else is decoded with mapstructure, with
// struct fields matched by their `json` tag.
func convertOutput[T any](v any) (T, error) {
	var out T
	if v == nil || skema.IsUndefined(v) {
		return out, nil
	}
	p := plain(v)
	if t, ok := p.(T); ok {
		return t, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     &out,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(p); err != nil {
		return out, fmt.Errorf("skema: bind %T: %w", out, err)
	}
	return out, nil
}

// plain replaces ordered maps by Go maps and drops absent markers so the
// tree can be asserted or decoded.
func plain(v any) any {
	switch x := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		m := make(map[string]any, x.Len())
		for p := x.Oldest(); p != nil; p = p.Next() {
			m[p.Key] = plain(p.Value)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = plain(e)
		}
		return s
	}
	if skema.IsUndefined(v) {
		return nil
	}
	return v
}
