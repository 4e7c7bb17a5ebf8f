package openapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/skema/dsl"
	"github.com/reoring/skema/openapi"
)

func userSchema() g.ObjectType {
	return g.Object(
		g.F("id", g.Union(g.String(), g.Number())),
		g.F("username", g.String().Min(1)),
		g.F("nick", g.String().Nullable()),
		g.F("age", g.Int().Gt(0).Optional()),
		g.F("role", g.Enum("admin", "member")),
		g.F("coords", g.Tuple(g.Number(), g.Number())),
	).Strict()
}

func TestSchema_Object(t *testing.T) {
	s, err := openapi.Schema(userSchema())
	require.NoError(t, err)

	require.NotNil(t, s.Type)
	assert.True(t, s.Type.Is("object"))
	assert.Equal(t, []string{"id", "username", "nick", "role", "coords"}, s.Required)
	require.Contains(t, s.Properties, "nick")
	assert.True(t, s.Properties["nick"].Value.Nullable)
	assert.Len(t, s.Properties["id"].Value.AnyOf, 2)

	age := s.Properties["age"].Value
	require.NotNil(t, age.Min)
	assert.Equal(t, 0.0, *age.Min)
	assert.True(t, age.Type.Is("integer"))

	require.NotNil(t, s.AdditionalProperties.Has)
	assert.False(t, *s.AdditionalProperties.Has)
}

func TestSchema_VisitJSONAgreesWithValidate(t *testing.T) {
	d := userSchema()
	s, err := openapi.Schema(d)
	require.NoError(t, err)

	cases := []struct {
		name string
		in   map[string]any
		ok   bool
	}{
		{"valid", map[string]any{"id": "u1", "username": "a", "nick": nil, "role": "admin", "coords": []any{1.0, 2.0}}, true},
		{"numeric id", map[string]any{"id": 7.0, "username": "a", "nick": "x", "age": 3.0, "role": "member", "coords": []any{1.0, 2.0}}, true},
		{"age not positive", map[string]any{"id": "u1", "username": "a", "nick": nil, "age": 0.0, "role": "admin", "coords": []any{1.0, 2.0}}, false},
		{"bad role", map[string]any{"id": "u1", "username": "a", "nick": nil, "role": "root", "coords": []any{1.0, 2.0}}, false},
		{"unknown key", map[string]any{"id": "u1", "username": "a", "nick": nil, "role": "admin", "coords": []any{1.0, 2.0}, "x": 1.0}, false},
		{"short tuple", map[string]any{"id": "u1", "username": "a", "nick": nil, "role": "admin", "coords": []any{1.0}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, d.Validate(context.Background(), tc.in).OK())
			err := s.VisitJSON(tc.in)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDialect_Rewrites(t *testing.T) {
	m, err := openapi.Dialect(g.Literal("on"))
	require.NoError(t, err)
	assert.Equal(t, []any{"on"}, m["enum"])
	assert.NotContains(t, m, "const")

	m, err = openapi.Dialect(g.Record(g.Number()))
	require.NoError(t, err)
	assert.NotContains(t, m, "$schema")
	assert.Equal(t, map[string]any{"type": "number"}, m["additionalProperties"])

	m, err = openapi.Dialect(g.RecordOf(g.String().Min(2), g.Bool()))
	require.NoError(t, err)
	assert.NotContains(t, m, "propertyNames")
	assert.Equal(t, map[string]any{"type": "string", "minLength": 2.0}, m["x-propertyNames"])

	m, err = openapi.Dialect(g.Number().Gt(1).Lt(10))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m["minimum"])
	assert.Equal(t, true, m["exclusiveMinimum"])
	assert.Equal(t, 10.0, m["maximum"])
	assert.Equal(t, true, m["exclusiveMaximum"])
}

func TestDocument(t *testing.T) {
	ctx := context.Background()
	doc, err := openapi.Document(ctx, openapi.Info{Title: "users", Version: "1.0.0"}, map[string]openapi.Exporter{
		"User": g.Object(
			g.F("id", g.String()),
			g.F("tags", g.Array(g.String()).Max(5)),
		),
		"Status": g.Enum("active", "disabled"),
	})
	require.NoError(t, err)
	assert.Equal(t, openapi.Version, doc.OpenAPI)
	assert.Equal(t, "users", doc.Info.Title)

	user := doc.Components.Schemas["User"]
	require.NotNil(t, user)
	require.NotNil(t, user.Value.Properties["tags"].Value.MaxItems)
	assert.EqualValues(t, 5, *user.Value.Properties["tags"].Value.MaxItems)
	assert.Equal(t, []any{"active", "disabled"}, doc.Components.Schemas["Status"].Value.Enum)
}
