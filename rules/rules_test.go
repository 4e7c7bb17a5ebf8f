package rules_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
	"github.com/reoring/skema/rules"
)

func orderSchema() g.ObjectType {
	return g.Object(
		g.F("status", g.Enum("draft", "paid")),
		g.F("paidAt", g.String().Optional()),
		g.F("total", g.Number()),
		g.F("items", g.Array(g.Object(
			g.F("sku", g.String()),
			g.F("qty", g.Int().Positive()),
		))),
	).Superrefine(
		rules.If("/status", rules.Eq, "paid").Then(
			rules.Required("/paidAt"),
			rules.AtLeastOne("/items"),
		),
		rules.If("/status", rules.Eq, "draft").Then(
			rules.Forbidden("/paidAt", "draft orders cannot be paid"),
		),
		rules.UniqueBy("/items", "/sku"),
	)
}

func TestOrderRules(t *testing.T) {
	ctx := context.Background()
	s := orderSchema()

	ok := map[string]any{
		"status": "paid", "paidAt": "2024-01-01", "total": 10,
		"items": []any{map[string]any{"sku": "a", "qty": 1}},
	}
	assert.True(t, s.Validate(ctx, ok).OK())

	o := s.Validate(ctx, map[string]any{"status": "paid", "total": 0, "items": []any{}})
	require.False(t, o.OK())
	assert.Equal(t, []string{skema.CodeRequiredButMissing, skema.CodeArrayLengthConstraint}, o.Issues.Codes())
	assert.Equal(t, "paidAt", o.Issues[0].Path.String())
	assert.Equal(t, "items", o.Issues[1].Path.String())

	o = s.Validate(ctx, map[string]any{"status": "draft", "paidAt": "x", "total": 0, "items": []any{}})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "paidAt: draft orders cannot be paid", o.Issues[0].String())
}

func TestUniqueBy(t *testing.T) {
	ctx := context.Background()
	o := orderSchema().Validate(ctx, map[string]any{
		"status": "draft", "total": 0,
		"items": []any{
			map[string]any{"sku": "a", "qty": 1},
			map[string]any{"sku": "b", "qty": 1},
			map[string]any{"sku": "a", "qty": 2},
		},
	})
	require.Len(t, o.Issues, 1)
	it := o.Issues[0]
	assert.Equal(t, skema.CodeDuplicateValue, it.Code)
	assert.Equal(t, "items[2].sku", it.Path.String())
	assert.Equal(t, `duplicate value "a"`, it.Message)
	assert.Equal(t, 0, it.Params["first"])
	assert.Equal(t, 2, it.Params["dup"])
}

func TestRules_SkippedWhenFieldsFail(t *testing.T) {
	o := orderSchema().Validate(context.Background(), map[string]any{"status": "paid", "total": "x", "items": []any{}})
	assert.Equal(t, []string{skema.CodeTypeMismatch}, o.Issues.Codes())
}

func TestRules_NestedPathsAreRelative(t *testing.T) {
	s := g.Object(g.F("order", orderSchema()))
	o := s.Validate(context.Background(), map[string]any{
		"order": map[string]any{"status": "paid", "total": 1, "items": []any{map[string]any{"sku": "a", "qty": 1}}},
	})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "/order/paidAt", o.Issues[0].Path.Pointer())
}

func TestRules_FailFast(t *testing.T) {
	ctx := skema.WithFailFast(context.Background(), true)
	o := orderSchema().Validate(ctx, map[string]any{"status": "paid", "total": 0, "items": []any{}})
	assert.Equal(t, []string{skema.CodeRequiredButMissing}, o.Issues.Codes())
}

func TestConditionals(t *testing.T) {
	obj := map[string]any{
		"n":    json.Number("5"),
		"f":    2.5,
		"s":    "x",
		"list": []any{map[string]any{"k": 1}},
	}
	cases := []struct {
		name string
		c    rules.Conditional
		want bool
	}{
		{"json number gt", rules.If("/n", rules.Gt, 4), true},
		{"json number eq int", rules.If("/n", rules.Eq, 5), true},
		{"float le", rules.If("/f", rules.Le, 2.5), true},
		{"string ne", rules.If("/s", rules.Ne, "y"), true},
		{"string ordered is false", rules.If("/s", rules.Lt, "y"), false},
		{"missing is false", rules.If("/missing", rules.Ne, 1), false},
		{"indexed", rules.If("/list/0/k", rules.Eq, 1), true},
		{"and", rules.If("/s", rules.Eq, "x").And(rules.If("/f", rules.Gt, 3)), false},
		{"or", rules.If("/s", rules.Eq, "y").Or(rules.If("/f", rules.Gt, 2)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.c.Holds(obj))
		})
	}
}

func TestOr_ReturnsSmallestFailure(t *testing.T) {
	r := rules.Or(
		rules.And(rules.Required("/a"), rules.Required("/b")),
		rules.Required("/c"),
	)
	iss := r(context.Background(), map[string]any{}, nil)
	require.Len(t, iss, 1)
	assert.Equal(t, "c", iss[0].Path.String())
	assert.Empty(t, r(context.Background(), map[string]any{"c": 1}, nil))
}
