package skema

import (
	"fmt"
	"strconv"
	"strings"
)

// Path locates a value inside nested input. Elements are field names (string),
// array/tuple indices (int) or, for Map descriptors, arbitrary keys.
type Path []any

// Field returns a copy of p extended with a field name.
func (p Path) Field(name string) Path { return p.with(name) }

// Index returns a copy of p extended with an index.
func (p Path) Index(i int) Path { return p.with(i) }

// Key returns a copy of p extended with an arbitrary map key.
func (p Path) Key(k any) Path { return p.with(k) }

func (p Path) with(seg any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path in accessor notation, for example coords[2] or
// id.data. Names that are not plain identifiers are quoted: meta["a.b"].
func (p Path) String() string {
	b := &strings.Builder{}
	for i, seg := range p {
		switch s := seg.(type) {
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s))
			b.WriteByte(']')
		case string:
			if !isIdent(s) {
				b.WriteByte('[')
				b.WriteString(strconv.Quote(s))
				b.WriteByte(']')
				continue
			}
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s)
		default:
			fmt.Fprintf(b, "[%v]", s)
		}
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(fmt.Sprint(seg)))
	}
	return b.String()
}

// Issue creates an Issue at p. kv is read as alternating parameter names and values.
func (p Path) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Path: p, Code: code, Message: msg, Params: m}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// ParsePointer is the inverse of Pointer. Segments made of digits only are
// read as indices; "" and "/" yield the root.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	out := make(Path, len(parts))
	for i, s := range parts {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && s == strconv.Itoa(n) {
			out[i] = n
			continue
		}
		out[i] = pointerUnescaper.Replace(s)
	}
	return out
}
