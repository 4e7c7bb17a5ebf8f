package openapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
	"github.com/reoring/skema/openapi"
)

const crd = `{
  "apiVersion": "apiextensions.k8s.io/v1",
  "kind": "CustomResourceDefinition",
  "spec": {
    "versions": [
      {"name": "v1alpha1", "served": false, "schema": {"openAPIV3Schema": {"type": "string"}}},
      {"name": "v1", "served": true, "schema": {"openAPIV3Schema": {
        "type": "object",
        "required": ["spec"],
        "properties": {
          "spec": {
            "type": "object",
            "required": ["replicas", "image"],
            "additionalProperties": false,
            "properties": {
              "replicas": {"type": "integer", "minimum": 1, "maximum": 10},
              "image": {"type": "string", "pattern": "^[a-z0-9./:-]+$"},
              "port": {"x-kubernetes-int-or-string": true},
              "mode": {"type": "string", "enum": ["fast", "safe"], "default": "safe"},
              "labels": {"type": "object", "additionalProperties": {"type": "string"}},
              "hosts": {"type": "array", "items": {"type": "string"}, "x-kubernetes-list-type": "set"},
              "extra": {"type": "object", "x-kubernetes-preserve-unknown-fields": true}
            }
          }
        }
      }}}
    ]
  }
}`

func TestImport_CRD(t *testing.T) {
	ctx := context.Background()
	s, diag, err := openapi.Import([]byte(crd), openapi.ImportOptions{ApplyDefaults: true})
	require.NoError(t, err)
	assert.False(t, diag.HasWarnings(), diag.Warnings)

	good := map[string]any{"spec": map[string]any{
		"replicas": 3,
		"image":    "nginx:1.25",
		"port":     "http",
		"labels":   map[string]any{"app": "web"},
		"hosts":    []any{"a", "b"},
		"extra":    map[string]any{"anything": true},
	}}
	o := s.Validate(ctx, good)
	require.True(t, o.OK(), "%v", o.Issues)
	spec := o.Value.(map[string]any)["spec"].(map[string]any)
	assert.Equal(t, "safe", spec["mode"])
	assert.Equal(t, map[string]any{"anything": true}, spec["extra"])

	bad := map[string]any{"spec": map[string]any{
		"replicas": 0,
		"image":    "UPPER",
		"port":     1.5,
		"hosts":    []any{"a", "a"},
		"unknown":  1,
	}}
	o = s.Validate(ctx, bad)
	var paths []string
	for _, it := range o.Issues {
		paths = append(paths, it.Path.String())
	}
	assert.Equal(t, []string{"spec.hosts", "spec.image", "spec.port", "spec.replicas", "spec.unknown"}, paths)
}

func TestImport_RefsAndNullable(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"$ref": "#/$defs/person"},
			"note":  map[string]any{"type": "string", "nullable": true},
		},
		"required": []any{"owner", "note"},
		"$defs": map[string]any{
			"person": map[string]any{
				"type":       "object",
				"required":   []any{"name"},
				"properties": map[string]any{"name": map[string]any{"type": "string", "minLength": 1.0}},
			},
		},
	}
	s, _, err := openapi.Import(doc, openapi.ImportOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, s.Validate(ctx, map[string]any{"owner": map[string]any{"name": "a"}, "note": nil}).OK())
	o := s.Validate(ctx, map[string]any{"owner": map[string]any{"name": ""}})
	// Properties are imported in name order.
	assert.Equal(t, []string{skema.CodeRequiredButMissing, skema.CodeRefinementFailed}, o.Issues.Codes())
}

func TestImport_Errors(t *testing.T) {
	_, _, err := openapi.Import(nil, openapi.ImportOptions{})
	assert.Error(t, err)

	_, _, err = openapi.Import(map[string]any{"$ref": "#/$defs/missing"}, openapi.ImportOptions{})
	assert.ErrorContains(t, err, "unresolved $ref")

	loop := map[string]any{
		"$ref":  "#/$defs/a",
		"$defs": map[string]any{"a": map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/a"}}},
	}
	_, _, err = openapi.Import(loop, openapi.ImportOptions{})
	assert.ErrorContains(t, err, "recursive $ref")

	_, _, err = openapi.Import(map[string]any{"type": "tensor"}, openapi.ImportOptions{})
	assert.ErrorContains(t, err, `unknown type "tensor"`)
}

func TestImport_Warnings(t *testing.T) {
	_, diag, err := openapi.Import(map[string]any{
		"type":  "object",
		"allOf": []any{},
		"properties": map[string]any{
			"at": map[string]any{"type": "string", "format": "date-time"},
		},
	}, openapi.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/: allOf is not supported and was ignored",
		`/properties/at: format "date-time" is not enforced`,
	}, diag.Warnings)
}

// Exported descriptors survive a trip through kin-openapi and back.
func TestImport_RoundTrip(t *testing.T) {
	orig := g.Object(
		g.F("name", g.String().Min(2)),
		g.F("age", g.Int().Gt(0).Optional()),
		g.F("tags", g.Array(g.String()).Max(2)),
	).Strict()
	sch, err := openapi.Schema(orig)
	require.NoError(t, err)
	require.Contains(t, sch.Properties, "tags")

	back, _, err := openapi.Import(sch, openapi.ImportOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	inputs := []map[string]any{
		{"name": "ab", "tags": []any{}},
		{"name": "ab", "age": 1, "tags": []any{"x"}},
		{"name": "a", "tags": []any{}},
		{"name": "ab", "age": 0, "tags": []any{}},
		{"name": "ab", "tags": []any{"x", "y", "z"}},
		{"name": "ab", "tags": []any{}, "extra": true},
	}
	for _, in := range inputs {
		assert.Equal(t, orig.Validate(ctx, in).OK(), back.Validate(ctx, in).OK(), "%v", in)
	}
}
