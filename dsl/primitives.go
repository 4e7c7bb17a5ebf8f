package dsl

import (
	"encoding/json"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	js "github.com/reoring/skema/jsonschema"
)

// StringType describes a string with optional refinements.
type StringType struct{ Type[string] }

// NumberType describes a number. Any Go numeric kind and json.Number are
// accepted and returned unchanged; NaN is rejected.
type NumberType struct{ Type[float64] }

// BoolType describes a boolean.
type BoolType struct{ Type[bool] }

// DateType describes a time.Time.
type DateType struct{ Type[time.Time] }

// String returns a string descriptor.
func String() StringType { return StringType{Type[string]{&node{kind: KindString}}} }

// Number returns a number descriptor.
func Number() NumberType { return NumberType{Type[float64]{&node{kind: KindNumber}}} }

// Int is shorthand for Number().Int().
func Int() NumberType { return Number().Int() }

// Bool returns a boolean descriptor.
func Bool() BoolType { return BoolType{Type[bool]{&node{kind: KindBool}}} }

// Date returns a date descriptor.
func Date() DateType { return DateType{Type[time.Time]{&node{kind: KindDate}}} }

// Any accepts every value, including an absent one, unchanged.
func Any() Type[any] { return Type[any]{&node{kind: KindAny}} }

// matchPrimitive checks the runtime kind of v. It returns the output value
// and the value handed to refinements (string, float64, bool or time.Time).
func matchPrimitive(n *node, v any) (out, cv any, ok bool) {
	switch n.kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, s, true
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String && !isJSONNumber(v) {
			return v, rv.String(), true
		}
		if n.coerce {
			if s, ok := coerceString(v); ok {
				return s, s, true
			}
		}
	case KindNumber:
		if f, ok := toFloat(v); ok {
			if math.IsNaN(f) {
				return nil, nil, false
			}
			return v, f, true
		}
		if n.coerce {
			if f, ok := coerceNumber(v); ok {
				return f, f, true
			}
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, b, true
		}
		if n.coerce {
			if s, ok := v.(string); ok {
				if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
					return b, b, true
				}
			}
		}
	case KindDate:
		if t, ok := v.(time.Time); ok {
			return t, t, true
		}
		if n.coerce {
			if t, ok := coerceDate(v); ok {
				return t, t, true
			}
		}
	}
	return nil, nil, false
}

func isJSONNumber(v any) bool {
	_, ok := v.(json.Number)
	return ok
}

func coerceString(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	}
	if f, ok := toFloat(v); ok {
		return formatNumber(f), true
	}
	return "", false
}

func coerceNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case time.Time:
		return float64(x.UnixMilli()), true
	}
	return 0, false
}

// coerceDate accepts RFC 3339 strings and Unix milliseconds.
func coerceDate(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		return t, err == nil
	}
	if f, ok := toFloat(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}

// ---- string refinements ----

func (s StringType) check(c check) StringType { return StringType{Type[string]{s.n.withCheck(c)}} }

func stringCheck(key string, params map[string]string, msg []string, test func(string) bool, schema func(*js.Schema)) check {
	return check{key: key, params: params, message: firstMessage(msg), schema: schema,
		test: func(v any) bool { return test(v.(string)) }}
}

// Min requires at least n characters (runes).
func (s StringType) Min(n int, msg ...string) StringType {
	return s.check(stringCheck("string.min", map[string]string{"min": strconv.Itoa(n)}, msg,
		func(v string) bool { return utf8.RuneCountInString(v) >= n },
		func(o *js.Schema) { o.MinLength = js.IntPtr(n) }))
}

// Max allows at most n characters (runes).
func (s StringType) Max(n int, msg ...string) StringType {
	return s.check(stringCheck("string.max", map[string]string{"max": strconv.Itoa(n)}, msg,
		func(v string) bool { return utf8.RuneCountInString(v) <= n },
		func(o *js.Schema) { o.MaxLength = js.IntPtr(n) }))
}

// Length requires exactly n characters (runes).
func (s StringType) Length(n int, msg ...string) StringType {
	return s.check(stringCheck("string.length", map[string]string{"length": strconv.Itoa(n)}, msg,
		func(v string) bool { return utf8.RuneCountInString(v) == n },
		func(o *js.Schema) { o.MinLength, o.MaxLength = js.IntPtr(n), js.IntPtr(n) }))
}

// NonEmpty is Min(1).
func (s StringType) NonEmpty(msg ...string) StringType { return s.Min(1, msg...) }

// Regex requires a match of re.
func (s StringType) Regex(re *regexp.Regexp, msg ...string) StringType {
	return s.check(stringCheck("string.regex", map[string]string{"pattern": re.String()}, msg,
		re.MatchString,
		func(o *js.Schema) { o.Pattern = re.String() }))
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email requires a plausible e-mail address.
func (s StringType) Email(msg ...string) StringType {
	return s.check(stringCheck("string.email", nil, msg, emailRe.MatchString,
		func(o *js.Schema) { o.Format = "email" }))
}

// UUID requires an RFC 4122 UUID in canonical 36 character form.
func (s StringType) UUID(msg ...string) StringType {
	return s.check(stringCheck("string.uuid", nil, msg,
		func(v string) bool {
			if len(v) != 36 {
				return false
			}
			_, err := uuid.Parse(v)
			return err == nil
		},
		func(o *js.Schema) { o.Format = "uuid" }))
}

// URL requires an absolute URL with a scheme and host.
func (s StringType) URL(msg ...string) StringType {
	return s.check(stringCheck("string.url", nil, msg,
		func(v string) bool {
			u, err := url.Parse(v)
			return err == nil && u.Scheme != "" && u.Host != ""
		},
		func(o *js.Schema) { o.Format = "uri" }))
}

// StartsWith requires prefix.
func (s StringType) StartsWith(prefix string, msg ...string) StringType {
	return s.check(stringCheck("string.startsWith", map[string]string{"prefix": strconv.Quote(prefix)}, msg,
		func(v string) bool { return strings.HasPrefix(v, prefix) }, nil))
}

// EndsWith requires suffix.
func (s StringType) EndsWith(suffix string, msg ...string) StringType {
	return s.check(stringCheck("string.endsWith", map[string]string{"suffix": strconv.Quote(suffix)}, msg,
		func(v string) bool { return strings.HasSuffix(v, suffix) }, nil))
}

// Coerce converts numbers, booleans and dates to their string form before
// checking.
func (s StringType) Coerce() StringType {
	n := s.n.clone()
	n.coerce = true
	return StringType{Type[string]{n}}
}

// Refine appends a custom predicate.
func (s StringType) Refine(fn func(string) bool, message string) StringType {
	return s.check(refineCheck(fn, message))
}

// ---- number refinements ----

func (t NumberType) check(key string, bound float64, msg []string, test func(float64) bool, schema func(*js.Schema)) NumberType {
	var params map[string]string
	if key != "number.int" && key != "number.finite" {
		params = map[string]string{"value": formatNumber(bound)}
	}
	return NumberType{Type[float64]{t.n.withCheck(check{
		key: key, params: params, message: firstMessage(msg), schema: schema,
		test: func(v any) bool { return test(v.(float64)) },
	})}}
}

// Gt requires a value greater than bound.
func (t NumberType) Gt(bound float64, msg ...string) NumberType {
	return t.check("number.gt", bound, msg, func(f float64) bool { return f > bound },
		func(o *js.Schema) { o.ExclusiveMinimum = js.FloatPtr(bound) })
}

// Gte requires a value greater than or equal to bound.
func (t NumberType) Gte(bound float64, msg ...string) NumberType {
	return t.check("number.gte", bound, msg, func(f float64) bool { return f >= bound },
		func(o *js.Schema) { o.Minimum = js.FloatPtr(bound) })
}

// Lt requires a value less than bound.
func (t NumberType) Lt(bound float64, msg ...string) NumberType {
	return t.check("number.lt", bound, msg, func(f float64) bool { return f < bound },
		func(o *js.Schema) { o.ExclusiveMaximum = js.FloatPtr(bound) })
}

// Lte requires a value less than or equal to bound.
func (t NumberType) Lte(bound float64, msg ...string) NumberType {
	return t.check("number.lte", bound, msg, func(f float64) bool { return f <= bound },
		func(o *js.Schema) { o.Maximum = js.FloatPtr(bound) })
}

// Positive is Gt(0).
func (t NumberType) Positive(msg ...string) NumberType { return t.Gt(0, msg...) }

// Nonnegative is Gte(0).
func (t NumberType) Nonnegative(msg ...string) NumberType { return t.Gte(0, msg...) }

// Negative is Lt(0).
func (t NumberType) Negative(msg ...string) NumberType { return t.Lt(0, msg...) }

// Nonpositive is Lte(0).
func (t NumberType) Nonpositive(msg ...string) NumberType { return t.Lte(0, msg...) }

// Int requires an integral value.
func (t NumberType) Int(msg ...string) NumberType {
	return t.check("number.int", 0, msg, func(f float64) bool { return f == math.Trunc(f) && !math.IsInf(f, 0) },
		func(o *js.Schema) { o.Type = "integer" })
}

// MultipleOf requires value to be an integral multiple of step.
func (t NumberType) MultipleOf(step float64, msg ...string) NumberType {
	return t.check("number.multipleOf", step, msg, func(f float64) bool {
		if step == 0 {
			return false
		}
		q := f / step
		return math.Abs(q-math.Round(q)) < 1e-9
	}, func(o *js.Schema) { o.MultipleOf = js.FloatPtr(step) })
}

// Finite rejects ±Inf.
func (t NumberType) Finite(msg ...string) NumberType {
	return t.check("number.finite", 0, msg, func(f float64) bool { return !math.IsInf(f, 0) }, nil)
}

// Coerce parses numeric strings and converts booleans (1/0) and dates (Unix
// milliseconds). Coerced values are returned as float64.
func (t NumberType) Coerce() NumberType {
	n := t.n.clone()
	n.coerce = true
	return NumberType{Type[float64]{n}}
}

// Refine appends a custom predicate.
func (t NumberType) Refine(fn func(float64) bool, message string) NumberType {
	return NumberType{Type[float64]{t.n.withCheck(refineCheck(fn, message))}}
}

// ---- bool / date ----

// Coerce accepts the strings understood by strconv.ParseBool.
func (b BoolType) Coerce() BoolType {
	n := b.n.clone()
	n.coerce = true
	return BoolType{Type[bool]{n}}
}

// Min requires a date on or after t.
func (d DateType) Min(t time.Time, msg ...string) DateType {
	return d.dateCheck("date.min", t, msg, func(v time.Time) bool { return !v.Before(t) })
}

// Max requires a date on or before t.
func (d DateType) Max(t time.Time, msg ...string) DateType {
	return d.dateCheck("date.max", t, msg, func(v time.Time) bool { return !v.After(t) })
}

func (d DateType) dateCheck(key string, bound time.Time, msg []string, test func(time.Time) bool) DateType {
	return DateType{Type[time.Time]{d.n.withCheck(check{
		key: key, params: map[string]string{"value": bound.Format(time.RFC3339)}, message: firstMessage(msg),
		test: func(v any) bool { return test(v.(time.Time)) },
	})}}
}

// Coerce accepts RFC 3339 strings and Unix milliseconds.
func (d DateType) Coerce() DateType {
	n := d.n.clone()
	n.coerce = true
	return DateType{Type[time.Time]{n}}
}
