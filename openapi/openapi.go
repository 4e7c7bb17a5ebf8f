// Package openapi converts exported descriptor schemas into OpenAPI 3.0
// schema objects (github.com/getkin/kin-openapi).
//
// Descriptors export draft 2020-12 JSON Schema. OpenAPI 3.0 speaks an older
// dialect, so a few keywords are rewritten on the way:
//
//   - const becomes a single-value enum
//   - anyOf [X, {type: null}] becomes X with nullable: true
//   - prefixItems becomes items.anyOf with fixed minItems/maxItems
//   - numeric exclusiveMinimum/exclusiveMaximum become minimum/maximum plus
//     the boolean flag
//   - propertyNames is kept as the x-propertyNames extension
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	js "github.com/reoring/skema/jsonschema"
)

// Version is the OpenAPI version written by Document.
const Version = "3.0.3"

// Exporter is implemented by every dsl descriptor.
type Exporter interface {
	JSONSchema() (*js.Schema, error)
}

// Schema converts the descriptor's JSON Schema into an OpenAPI schema.
func Schema(e Exporter) (*openapi3.Schema, error) {
	doc, err := Dialect(e)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal schema: %w", err)
	}
	s := openapi3.NewSchema()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("openapi: load schema: %w", err)
	}
	return s, nil
}

// Dialect returns the descriptor's schema as a generic OpenAPI 3.0 document
// fragment.
func Dialect(e Exporter) (map[string]any, error) {
	s, err := e.JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("openapi: export: %w", err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal json schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("openapi: decode json schema: %w", err)
	}
	delete(m, "$schema")
	return downgrade(m), nil
}

// Info describes the document header.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Document builds an OpenAPI document whose components.schemas holds one
// entry per named descriptor. The result is validated before it is returned.
func Document(ctx context.Context, info Info, components map[string]Exporter) (*openapi3.T, error) {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make(map[string]any, len(components))
	for _, name := range names {
		frag, err := Dialect(components[name])
		if err != nil {
			return nil, fmt.Errorf("openapi: component %q: %w", name, err)
		}
		schemas[name] = frag
	}
	hdr := map[string]any{"title": info.Title, "version": info.Version}
	if info.Description != "" {
		hdr["description"] = info.Description
	}
	raw, err := json.Marshal(map[string]any{
		"openapi":    Version,
		"info":       hdr,
		"paths":      map[string]any{},
		"components": map[string]any{"schemas": schemas},
	})
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: invalid document: %w", err)
	}
	return doc, nil
}

func downgrade(m map[string]any) map[string]any {
	if props, ok := m["properties"].(map[string]any); ok {
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				props[name] = downgrade(pm)
			}
		}
	}
	if ap, ok := m["additionalProperties"].(map[string]any); ok {
		m["additionalProperties"] = downgrade(ap)
	}
	if pn, ok := m["propertyNames"].(map[string]any); ok {
		delete(m, "propertyNames")
		m["x-propertyNames"] = downgrade(pn)
	}
	if it, ok := m["items"].(map[string]any); ok {
		m["items"] = downgrade(it)
	}
	if prefix, ok := m["prefixItems"].([]any); ok {
		delete(m, "prefixItems")
		m["items"] = map[string]any{"anyOf": downgradeAll(prefix)}
	} else if b, ok := m["items"].(bool); ok && !b {
		delete(m, "items")
	}
	if v, ok := m["const"]; ok {
		delete(m, "const")
		m["enum"] = []any{v}
	}
	if t, ok := m["type"].(string); ok && t == "null" {
		delete(m, "type")
		m["nullable"] = true
		if _, ok := m["enum"]; !ok {
			m["enum"] = []any{nil}
		}
	}
	for _, bound := range [...]struct{ excl, incl string }{
		{"exclusiveMinimum", "minimum"},
		{"exclusiveMaximum", "maximum"},
	} {
		v, ok := m[bound.excl].(float64)
		if !ok {
			continue
		}
		// An inclusive bound that is already tighter wins.
		if cur, ok := m[bound.incl].(float64); ok {
			tighter := cur > v
			if bound.incl == "maximum" {
				tighter = cur < v
			}
			if tighter {
				delete(m, bound.excl)
				continue
			}
		}
		m[bound.incl] = v
		m[bound.excl] = true
	}
	for _, key := range []string{"anyOf", "oneOf"} {
		list, ok := m[key].([]any)
		if !ok {
			continue
		}
		list = downgradeAll(list)
		if key == "anyOf" {
			if inner, ok := nullableOf(list); ok {
				delete(m, "anyOf")
				for k, v := range inner {
					if _, taken := m[k]; !taken {
						m[k] = v
					}
				}
				m["nullable"] = true
				continue
			}
		}
		m[key] = list
	}
	return m
}

func downgradeAll(list []any) []any {
	for i, s := range list {
		if sm, ok := s.(map[string]any); ok {
			list[i] = downgrade(sm)
		}
	}
	return list
}

// nullableOf reports whether list is [X, null] and returns X. The null
// member has already been rewritten to {nullable, enum: [null]}.
func nullableOf(list []any) (map[string]any, bool) {
	if len(list) != 2 {
		return nil, false
	}
	inner, ok := list[0].(map[string]any)
	if !ok || !isNullOnly(list[1]) {
		return nil, false
	}
	return inner, true
}

func isNullOnly(s any) bool {
	m, ok := s.(map[string]any)
	if !ok || len(m) != 2 || m["nullable"] != true {
		return false
	}
	enum, ok := m["enum"].([]any)
	return ok && len(enum) == 1 && enum[0] == nil
}
