// Package toml turns a TOML document into an engine.TokenSource.
package toml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	eng "github.com/reoring/skema/internal/engine"
)

// NewBytes decodes the TOML document in b.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// NewReader decodes the TOML document read from r.
func NewReader(r io.Reader) eng.TokenSource {
	var m map[string]any
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return eng.NewErrorSource(fmt.Errorf("toml: %w", err))
	}
	return eng.NewTreeSource(normalize(m))
}

// normalize rewrites the typed slices produced for arrays of tables into the
// []any / map[string]any shape the engine expects.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
