package skema

// UnknownPolicy controls how object keys that are not declared are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys (default).
	UnknownPassthrough                      // Copy unknown keys into the output unchanged.
	UnknownStrict                           // Reject each unknown key with an issue.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownPassthrough:
		return "passthrough"
	case UnknownStrict:
		return "strict"
	default:
		return "strip"
	}
}

// NumberMode dictates how numbers are interpreted by input sources.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve json.Number.
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore or Error (duplicate object keys).
}

// Severity expresses the severity level for source enforcement.
type Severity int

const (
	Ignore Severity = iota
	Error
)

// PresenceOpt configures presence collection for WithMeta-style parsing.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// ParseOpt bundles options for the source-driven entry points.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	// PreserveOrder decodes objects into insertion-ordered maps so passthrough
	// keys and record entries keep their input order.
	PreserveOrder bool
	Presence      PresenceOpt
	FailFast      bool
}
