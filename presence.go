package skema

import "strings"

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Mark ORs flags into the entry for path p.
func (pm PresenceMap) Mark(p Path, flags Presence) {
	if pm == nil {
		return
	}
	pm[p.Pointer()] |= flags
}

// Has reports whether all flags are set at pointer.
func (pm PresenceMap) Has(pointer string, flags Presence) bool {
	return pm[pointer]&flags == flags
}

// Decoded carries the parsed value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// applyPresenceOptions filters pm by include/exclude pointer prefixes.
func applyPresenceOptions(pm PresenceMap, popt PresenceOpt) PresenceMap {
	if pm == nil || !popt.Collect {
		return nil
	}
	if len(popt.Include) == 0 && len(popt.Exclude) == 0 {
		return pm
	}
	shouldInclude := func(path string) bool {
		if len(popt.Include) > 0 {
			ok := false
			for _, p := range popt.Include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range popt.Exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	filtered := make(PresenceMap, len(pm))
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}
