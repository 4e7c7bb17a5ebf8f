// Package skema validates dynamic values against declarative descriptors.
//
// Descriptors are built with package dsl and are immutable: every builder
// returns a new value, so one descriptor may be shared by any number of
// goroutines. Validating a value yields an Outcome that is either valid,
// carrying the normalized output, or invalid, carrying every Issue found in
// a deterministic order.
//
// The root package holds the shared vocabulary:
//   - Issue / Issues / Path: the error model. Issues implements error and
//     lists each issue as "path: message (code)".
//   - Undefined: the marker for an absent value, distinct from nil (null).
//   - Schema[T] with Parse, SafeParse, MustParse and Is.
//   - ParseFrom / ParseFromWithMeta / StreamParse: decode JSON, YAML or TOML
//     through a Source, enforce duplicate-key, depth and size limits, then
//     validate.
//   - WithLogger / WithFailFast / WithPresence: per-call context options.
//
// Typical usage:
//
//	user := dsl.Object(
//	    dsl.F("id", dsl.String()),
//	    dsl.F("email", dsl.String().Email()),
//	).Strict()
//	v, err := skema.ParseFrom(ctx, user, skema.JSONBytes(data))
//	if iss, ok := skema.AsIssues(err); ok {
//	    // iss[0].Path, iss[0].Code, iss[0].Message
//	}
package skema
