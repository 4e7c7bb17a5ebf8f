// Package middleware validates JSON request bodies in net/http handler
// chains. Middlewares have the func(http.Handler) http.Handler shape used by
// chi and most routers.
package middleware

import (
	"context"
	"net/http"

	j "github.com/goccy/go-json"

	"github.com/reoring/skema"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, db skema.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, db)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (skema.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(skema.Decoded[T])
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Presence is collected for preserve-friendly semantics
// - Bodies are capped at 1 MiB and 64 levels of nesting
func DefaultParseOpt() skema.ParseOpt {
	return skema.ParseOpt{
		Strictness: skema.Strictness{OnDuplicateKey: skema.Error},
		Presence:   skema.PresenceOpt{Collect: true},
		MaxBytes:   1 << 20,
		MaxDepth:   64,
	}
}

// IssueBody is the JSON form of one issue.
type IssueBody struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorBody is the response payload for rejected requests. Exactly one of
// Error and Issues is set.
type ErrorBody struct {
	Error  string      `json:"error,omitempty"`
	Issues []IssueBody `json:"issues,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses. Paths are JSON Pointers.
func ErrorPayload(issues skema.Issues) ErrorBody {
	out := ErrorBody{Issues: make([]IssueBody, len(issues))}
	for i, it := range issues {
		out.Issues[i] = IssueBody{Path: it.Path.Pointer(), Code: it.Code, Message: it.Message, Params: it.Params}
	}
	return out
}

// withDefaults fills the zero-valued limits of opt from DefaultParseOpt.
// Negative limits disable the check. Duplicate keys are always rejected and
// presence is always collected.
func withDefaults(opt skema.ParseOpt) skema.ParseOpt {
	def := DefaultParseOpt()
	opt.Strictness.OnDuplicateKey = skema.Error
	opt.Presence.Collect = true
	switch {
	case opt.MaxBytes == 0:
		opt.MaxBytes = def.MaxBytes
	case opt.MaxBytes < 0:
		opt.MaxBytes = 0
	}
	switch {
	case opt.MaxDepth == 0:
		opt.MaxDepth = def.MaxDepth
	case opt.MaxDepth < 0:
		opt.MaxDepth = 0
	}
	return opt
}

// ValidateJSON parses the request body with schema s and stores the
// Decoded[T] in the request context. Limits left at zero in opt take their
// DefaultParseOpt value; the other fields are used as given. Invalid bodies
// are answered with 400 and an ErrorBody; next is not called.
func ValidateJSON[T any](s skema.Schema[T], opt skema.ParseOpt) func(http.Handler) http.Handler {
	opt = withDefaults(opt)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			body := r.Body
			if opt.MaxBytes > 0 {
				body = http.MaxBytesReader(w, body, opt.MaxBytes)
			}
			dm, err := skema.ParseFromWithMeta(ctx, s, skema.JSONReader(body), opt)
			if err != nil {
				log := skema.Logger(ctx)
				if iss, ok := skema.AsIssues(err); ok {
					log.Debug().Int("issues", len(iss)).Str("path", r.URL.Path).Msg("request body rejected")
					WriteJSON(w, http.StatusBadRequest, ErrorPayload(iss))
					return
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("request body undecodable")
				WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(ctx, dm)))
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}
