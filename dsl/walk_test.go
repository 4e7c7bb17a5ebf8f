package dsl_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
)

func TestParseWithMeta_Presence(t *testing.T) {
	ctx := context.Background()
	s := g.Object(
		g.F("a", g.String()),
		g.F("b", g.Number().Default(1)),
		g.F("c", g.String().Nullable()),
		g.F("d", g.Array(g.String().Optional())),
	)
	dm, err := s.ParseWithMeta(ctx, map[string]any{"a": "x", "c": nil, "d": []any{"p"}})
	require.NoError(t, err)
	assert.Equal(t, float64(1), dm.Value["b"])

	pm := dm.Presence
	assert.True(t, pm.Has("/", skema.PresenceSeen))
	assert.True(t, pm.Has("/a", skema.PresenceSeen))
	assert.False(t, pm.Has("/a", skema.PresenceWasNull))
	assert.True(t, pm.Has("/b", skema.PresenceDefaultApplied))
	assert.False(t, pm.Has("/b", skema.PresenceSeen))
	assert.True(t, pm.Has("/c", skema.PresenceSeen|skema.PresenceWasNull))
	assert.True(t, pm.Has("/d/0", skema.PresenceSeen))

	// Presence is only collected on request.
	o := s.Validate(ctx, map[string]any{"a": "x", "c": nil, "d": []any{}})
	require.True(t, o.OK())
	assert.Nil(t, o.Presence)
}

func TestParseWithMeta_PresenceThroughUnion(t *testing.T) {
	ctx := context.Background()
	s := g.Union(
		g.Object(g.F("n", g.Number())),
		g.Object(g.F("s", g.String()), g.F("t", g.String().Default("d"))),
	)
	dm, err := s.ParseWithMeta(ctx, map[string]any{"s": "x"})
	require.NoError(t, err)
	assert.True(t, dm.Presence.Has("/s", skema.PresenceSeen))
	assert.True(t, dm.Presence.Has("/t", skema.PresenceDefaultApplied))
}

func TestFailFast_StopsAtFirstIssue(t *testing.T) {
	s := g.Object(
		g.F("a", g.String()),
		g.F("b", g.String()),
		g.F("c", g.Array(g.Number())),
	).Strict()
	in := map[string]any{"a": 1, "b": 2, "c": []any{"x", "y"}, "z": true}

	o := s.Validate(context.Background(), in)
	assert.Len(t, o.Issues, 5)

	o = s.Validate(skema.WithFailFast(context.Background(), true), in)
	require.Len(t, o.Issues, 1)
	assert.Equal(t, "a", o.Issues[0].Path.String())
}

func TestValidate_LogsUnionDecisions(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := skema.WithLogger(context.Background(), l)

	_ = g.Union(g.String(), g.Number()).Validate(ctx, true)
	assert.Contains(t, buf.String(), "no union candidate matched")

	buf.Reset()
	_ = g.Union(g.String(), g.Number()).Validate(ctx, 1)
	assert.Contains(t, buf.String(), `"candidate":1`)
}

func TestValidate_ConcurrentUse(t *testing.T) {
	s := userSchema()
	in := map[string]any{
		"id":       1,
		"username": "JDoe",
		"friends":  []any{"Jane"},
		"coords":   []any{1, 2, 5},
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := skema.WithPresence(context.Background(), true)
			for j := 0; j < 50; j++ {
				o := s.Validate(ctx, in)
				if !o.OK() {
					t.Errorf("unexpected issues: %v", o.Issues)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestValidate_IdempotentOnOutput(t *testing.T) {
	ctx := context.Background()
	s := g.Object(
		g.F("id", g.String()),
		g.F("score", g.Number().Default(0)),
		g.F("tags", g.Array(g.String())),
		g.F("owner", g.Object(
			g.F("name", g.String().Min(1)),
			g.F("roles", g.Array(g.Object(g.F("role", g.Enum("admin", "dev"))))),
		)),
	)
	inputs := []map[string]any{
		{
			"id": "a", "tags": []any{"x"}, "extra": 1,
			"owner": map[string]any{"name": "n", "roles": []any{map[string]any{"role": "dev", "since": 2020}}},
		},
		{
			"id": "b", "score": 3.5, "tags": []any{},
			"owner": map[string]any{"name": "m", "roles": []any{}, "x": true},
		},
	}
	for _, in := range inputs {
		first := s.Validate(ctx, in)
		require.True(t, first.OK(), "%v", first.Issues)
		second := s.Validate(ctx, first.Value)
		require.True(t, second.OK(), "%v", second.Issues)
		assert.Equal(t, first.Value, second.Value)
	}

	// Failing input stays failing with the same issues after a second pass
	// over the same input.
	bad := map[string]any{"id": 1, "tags": "x", "owner": map[string]any{"name": ""}}
	assert.Equal(t, s.Validate(ctx, bad).Issues, s.Validate(ctx, bad).Issues)
}

func TestValidate_AbsentOptionalArrayElements(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String().Optional())
	o := s.Validate(ctx, []any{"a", skema.Undefined})
	require.True(t, o.OK(), "%v", o.Issues)
	out := o.Value.([]any)
	assert.Equal(t, "a", out[0])
	assert.True(t, skema.IsUndefined(out[1]))

	again := s.Validate(ctx, o.Value)
	require.True(t, again.OK())
	assert.Equal(t, o.Value, again.Value)

	v, err := g.As[[]any](s).Parse(ctx, []any{"a", skema.Undefined})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil}, v)
}
