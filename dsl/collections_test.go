package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
)

func TestArray_ElementIssuesAndLength(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String()).Min(3)

	o := s.Validate(ctx, []any{"a", 1})
	require.Len(t, o.Issues, 2)
	assert.Equal(t, skema.CodeTypeMismatch, o.Issues[0].Code)
	assert.Equal(t, "[1]", o.Issues[0].Path.String())
	assert.Equal(t, skema.CodeArrayLengthConstraint, o.Issues[1].Code)
	assert.Equal(t, "array must contain at least 3 element(s)", o.Issues[1].Message)
	assert.Empty(t, o.Issues[1].Path)

	o = g.Array(g.String()).Max(1).Validate(ctx, []any{"a", "b"})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "array must contain at most 1 element(s)", o.Issues[0].Message)

	o = g.Array(g.String()).Length(2).Validate(ctx, []any{"a"})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "array must contain exactly 2 element(s)", o.Issues[0].Message)

	o = g.Array(g.String()).NonEmpty().Validate(ctx, []any{})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "array must not be empty", o.Issues[0].Message)
}

func TestArray_TypedSlicesAndParse(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String())

	o := s.Validate(ctx, []string{"a", "b"})
	require.True(t, o.OK())
	assert.Equal(t, []any{"a", "b"}, o.Value)

	v, err := s.Parse(ctx, []any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	o = s.Validate(ctx, "ab")
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "expected array, received string", o.Issues[0].Message)

	nested := g.Array(g.Array(g.Number()))
	o = nested.Validate(ctx, []any{[]any{1}, []any{2, "x"}})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "[1][1]", o.Issues[0].Path.String())
}

func TestArray_RefineSkippedWhenElementsFail(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := g.Array(g.Number()).Refine(func(v []float64) bool { calls++; return len(v) > 0 }, "empty")
	_ = s.Validate(ctx, []any{"x"})
	assert.Equal(t, 0, calls)
	o := s.Validate(ctx, []any{})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "empty", o.Issues[0].Message)
	assert.Equal(t, 1, calls)
}

func TestTuple(t *testing.T) {
	ctx := context.Background()
	s := g.Tuple(g.String(), g.Number(), g.Bool().Optional())

	o := s.Validate(ctx, []any{"a", 1, skema.Undefined})
	require.True(t, o.OK(), "issues: %v", o.Issues)

	o = s.Validate(ctx, []any{"a", 1})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, skema.CodeTupleLengthMismatch, o.Issues[0].Code)
	assert.Equal(t, "expected tuple of length 3, received 2", o.Issues[0].Message)

	o = s.Validate(ctx, []any{1, "a", true})
	assert.Equal(t, []string{skema.CodeTypeMismatch, skema.CodeTypeMismatch}, o.Issues.Codes())
	assert.Equal(t, "[0]", o.Issues[0].Path.String())
	assert.Equal(t, "[1]", o.Issues[1].Path.String())
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	s := g.Record(g.Number())

	v, err := s.Parse(ctx, map[string]any{"a": 1, "b": 2.5})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1, "b": 2.5}, v)

	o := s.Validate(ctx, map[string]any{"a": 1, "b": "x", "c": nil})
	require.Len(t, o.Issues, 2)
	assert.Equal(t, skema.CodeRecordValueInvalid, o.Issues[0].Code)
	assert.Equal(t, "b", o.Issues[0].Path.String())
	assert.Equal(t, `invalid value for key "b"`, o.Issues[0].Message)
	require.Len(t, o.Issues[0].Inner, 1)
	assert.Equal(t, []string{skema.CodeTypeMismatch}, o.Issues[0].Inner[0].Codes())
	assert.Equal(t, "b", o.Issues[0].Inner[0][0].Path.String())
	assert.Equal(t, "c", o.Issues[1].Path.String())
	assert.Equal(t, skema.CodeNullNotAllowed, o.Issues[1].Inner[0][0].Code)

	o = s.Validate(ctx, []any{})
	require.Len(t, o.Issues, 1)
	assert.Equal(t, skema.CodeTypeMismatch, o.Issues[0].Code)
}

func TestRecord_KeyDescriptor(t *testing.T) {
	ctx := context.Background()
	s := g.RecordOf(g.String().Min(2), g.String())

	o := s.Validate(ctx, map[string]any{"ab": "x", "a": 1})
	require.Len(t, o.Issues, 2)
	assert.Equal(t, skema.CodeRecordKeyInvalid, o.Issues[0].Code)
	assert.Equal(t, "a", o.Issues[0].Path.String())
	assert.Equal(t, []string{skema.CodeRefinementFailed}, o.Issues[0].Inner[0].Codes())
	assert.Equal(t, skema.CodeRecordValueInvalid, o.Issues[1].Code)

	o = g.RecordOf(g.Enum("x", "y"), g.Number()).Validate(ctx, map[string]any{"x": 1, "y": 2})
	assert.True(t, o.OK(), "issues: %v", o.Issues)
}

func TestMap(t *testing.T) {
	ctx := context.Background()
	s := g.Map(g.Number(), g.String())

	o := s.Validate(ctx, map[int]string{2: "b", 1: "a"})
	require.True(t, o.OK(), "issues: %v", o.Issues)
	out, ok := o.Value.(*orderedmap.OrderedMap[any, any])
	require.True(t, ok, "got %T", o.Value)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 1, out.Oldest().Key)
	v, _ := out.Get(2)
	assert.Equal(t, "b", v)

	in := orderedmap.New[any, any]()
	in.Set("k", "v")
	in.Set(3, 4)
	o = s.Validate(ctx, in)
	assert.Equal(t, []string{skema.CodeRecordKeyInvalid, skema.CodeRecordValueInvalid}, o.Issues.Codes())
	assert.Equal(t, "k", o.Issues[0].Path.String())
	assert.Equal(t, "[3]", o.Issues[1].Path.String())

	o = s.Validate(ctx, "nope")
	require.Len(t, o.Issues, 1)
	assert.Equal(t, skema.CodeTypeMismatch, o.Issues[0].Code)
}

func TestLiteralAndEnum(t *testing.T) {
	ctx := context.Background()

	o := g.Literal("a").Validate(ctx, "b")
	require.Len(t, o.Issues, 1)
	assert.Equal(t, skema.CodeLiteralMismatch, o.Issues[0].Code)
	assert.Equal(t, `invalid literal value, expected "a"`, o.Issues[0].Message)
	assert.True(t, g.Literal(3).Validate(ctx, 3.0).OK())
	assert.True(t, g.Literal(true).Validate(ctx, true).OK())
	assert.Panics(t, func() { g.Literal(struct{}{}) })

	e := g.Enum("red", "green", "blue")
	assert.Equal(t, []string{"red", "green", "blue"}, e.Options())
	o = e.Validate(ctx, "pink")
	require.Len(t, o.Issues, 1)
	assert.Equal(t, skema.CodeEnumMismatch, o.Issues[0].Code)
	assert.Equal(t, `invalid enum value, expected one of "red" | "green" | "blue", received "pink"`, o.Issues[0].Message)

	assert.Equal(t, []string{"blue", "red"}, e.Extract("blue", "red").Options())
	assert.Equal(t, []string{"red", "blue"}, e.Exclude("green").Options())
	assert.Panics(t, func() { e.Extract("pink") })
	assert.Panics(t, func() { g.Enum[string]() })
	assert.Panics(t, func() { g.Enum("a", "a") })
}

type color string

const (
	colorRed  color = "red"
	colorBlue color = "blue"
)

func TestNativeEnum(t *testing.T) {
	ctx := context.Background()
	e := g.NativeEnum(map[string]color{"Red": colorRed, "Blue": colorBlue, "Crimson": colorRed})
	assert.Equal(t, []color{colorBlue, colorRed}, e.Options())

	v, err := e.Parse(ctx, "red")
	require.NoError(t, err)
	assert.Equal(t, colorRed, v)

	_, err = e.Parse(ctx, "green")
	require.Error(t, err)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeEnumMismatch}, iss.Codes())
}
