package skema

import (
	"context"

	js "github.com/reoring/skema/jsonschema"
)

// Schema is the typed view of a descriptor: validation into an Outcome,
// conversion into T, and JSON Schema projection.
type Schema[T any] interface {
	// Validate matches v against the descriptor. It never panics on malformed
	// input; every problem is reported through the returned Outcome.
	Validate(ctx context.Context, v any) Outcome

	// Parse validates v and converts the normalized output into T. On failure
	// the error is an Issues value listing every problem.
	Parse(ctx context.Context, v any) (T, error)

	// ParseWithMeta returns the typed value together with presence metadata.
	ParseWithMeta(ctx context.Context, v any) (Decoded[T], error)

	// JSONSchema projects the schema into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// Parse is a thin wrapper around Schema.Parse.
func Parse[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	return s.Parse(ctx, v)
}

// MustParse is like Parse but panics with the aggregated Issues on failure.
func MustParse[T any](ctx context.Context, s Schema[T], v any) T {
	out, err := s.Parse(ctx, v)
	if err != nil {
		panic(err)
	}
	return out
}

// SafeParse parses v into T, returning (zero, false) on validation error.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) (T, bool) {
	val, err := s.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Is returns true if v conforms to the schema s.
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return s.Validate(ctx, v).OK()
}

// ParseWithMeta parses v and returns the value together with presence flags.
func ParseWithMeta[T any](ctx context.Context, s Schema[T], v any) (Decoded[T], error) {
	return s.ParseWithMeta(ctx, v)
}

// ---- Parse-time context options (internal wiring, exported for subpackages) ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyPresence
)

// WithFailFast returns a child context that stops validation at the first issue.
// This is set by ParseFrom based on ParseOpt and consumed by schema implementations.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithPresence returns a child context that asks schema implementations to
// fill Outcome.Presence.
func WithPresence(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyPresence, enabled)
}

// IsCollectPresence reports whether presence collection was requested.
func IsCollectPresence(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyPresence)
	b, _ := v.(bool)
	return b
}
