package skema

// undefined is the type of Undefined.
type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks an absent value. Pass it where a value is missing
// altogether (as opposed to nil, which is an explicit null). Object fields
// that are missing from the input map are treated the same way.
var Undefined any = undefined{}

// IsUndefined reports whether v is the absent marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Outcome is the result of validating one value: either valid with the
// normalized output, or invalid with a non-empty, ordered list of issues.
//
// An absent element of an array or tuple whose element descriptor is
// optional stays Undefined in Value, so validating Value again gives the same
// outcome. Check for it with IsUndefined; Parse turns it into nil.
type Outcome struct {
	Value  any
	Issues Issues
	// Presence is filled only when collection was requested (see WithPresence).
	Presence PresenceMap
}

// Valid returns a successful outcome carrying v.
func Valid(v any) Outcome { return Outcome{Value: v} }

// Invalid returns a failed outcome carrying iss.
func Invalid(iss Issues) Outcome { return Outcome{Issues: iss} }

// OK reports whether the outcome is valid.
func (o Outcome) OK() bool { return len(o.Issues) == 0 }

// Err returns the issues as an error, or nil when the outcome is valid.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return o.Issues
}
