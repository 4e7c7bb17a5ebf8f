package skema

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/skema/internal/engine"
)

// Issue codes.
const (
	CodeRequiredButMissing    = "required_but_missing"
	CodeNullNotAllowed        = "null_not_allowed"
	CodeTypeMismatch          = "type_mismatch"
	CodeRefinementFailed      = "refinement_failed"
	CodeLiteralMismatch       = "literal_mismatch"
	CodeEnumMismatch          = "enum_mismatch"
	CodeUnrecognizedKey       = "unrecognized_key"
	CodeTupleLengthMismatch   = "tuple_length_mismatch"
	CodeArrayLengthConstraint = "array_length_constraint"
	CodeNoUnionMemberMatched  = "no_union_member_matched"
	CodeUnknownDiscriminator  = "unknown_discriminator"
	CodeRecordKeyInvalid      = "record_key_invalid"
	CodeRecordValueInvalid    = "record_value_invalid"
	CodeDuplicateValue        = "duplicate_value"
)

// Source enforcement errors. They are returned wrapped by the ParseFrom family
// and never reported as Issues.
var (
	ErrDuplicateKey = eng.ErrDuplicateKey
	ErrMaxDepth     = eng.ErrMaxDepth
	ErrMaxBytes     = eng.ErrMaxBytes
)

// Issue represents a single validation entry.
type Issue struct {
	Path    Path   // Location of the failure; empty for the root.
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"expected":"string","received":"number"})
	// for i18n and observability.
	Params map[string]any
	// Inner holds nested issue lists. A no_union_member_matched issue carries one
	// entry per candidate in declared order; record issues carry the failures of
	// the offending key or value.
	Inner []Issues
}

// String renders the issue as "path: message".
func (it Issue) String() string {
	if len(it.Path) == 0 {
		return it.Message
	}
	return it.Path.String() + ": " + it.Message
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error lists every issue, in order, as "path: message (code)".
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, it := range iss {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s (%s)", it.String(), it.Code)
	}
	return b.String()
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// At returns the issues whose path renders to p (see Path.String).
func (iss Issues) At(p string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path.String() == p {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
