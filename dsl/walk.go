package dsl

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
)

// walker carries the per-call state of one validation. Descriptors stay
// untouched; everything mutable lives here.
type walker struct {
	ctx      context.Context
	failFast bool
	log      *zerolog.Logger
	presence skema.PresenceMap
	issues   skema.Issues
}

func validate(ctx context.Context, n *node, v any) skema.Outcome {
	w := &walker{
		ctx:      ctx,
		failFast: skema.IsFailFast(ctx),
		log:      skema.Logger(ctx),
	}
	if skema.IsCollectPresence(ctx) {
		w.presence = skema.PresenceMap{}
	}
	w.seen(nil, v)
	out := w.walk(n, v, nil)
	if len(w.issues) > 0 {
		return skema.Outcome{Issues: w.issues, Presence: w.presence}
	}
	return skema.Outcome{Value: out, Presence: w.presence}
}

// sub returns a walker for a speculative branch (union candidates, record
// keys). Its issues are merged or discarded by the caller.
func (w *walker) sub() *walker {
	s := &walker{ctx: w.ctx, failFast: w.failFast, log: w.log}
	if w.presence != nil {
		s.presence = skema.PresenceMap{}
	}
	return s
}

func (w *walker) adoptPresence(s *walker) {
	for k, v := range s.presence {
		w.presence[k] |= v
	}
}

func (w *walker) report(it skema.Issue) { w.issues = append(w.issues, it) }

func (w *walker) stopped() bool { return w.failFast && len(w.issues) > 0 }

func (w *walker) seen(path skema.Path, v any) {
	if w.presence == nil || skema.IsUndefined(v) {
		return
	}
	flags := skema.PresenceSeen
	if v == nil {
		flags |= skema.PresenceWasNull
	}
	w.presence.Mark(path, flags)
}

// walk validates v against n and returns the normalized output. The caller
// detects failure by comparing the issue count before and after.
func (w *walker) walk(n *node, v any, path skema.Path) any {
	switch n.kind {
	case KindAny:
		if !skema.IsUndefined(v) && !w.refine(n, v, path, true) {
			return nil
		}
		return v
	case KindOptional, KindNullable, KindNullish, KindDefault:
		return w.wrapper(n, v, path)
	case KindUnion:
		return w.union(n, v, path)
	}

	if skema.IsUndefined(v) {
		w.report(path.Issue(skema.CodeRequiredButMissing, i18n.T(skema.CodeRequiredButMissing, nil)))
		return nil
	}
	if v == nil && !(n.kind == KindLiteral && n.literal == nil) {
		exp := expected(n)
		w.report(path.Issue(skema.CodeNullNotAllowed,
			i18n.T(skema.CodeNullNotAllowed, map[string]string{"expected": exp}),
			"expected", exp))
		return nil
	}

	switch n.kind {
	case KindString, KindNumber, KindBool, KindDate:
		out, cv, ok := matchPrimitive(n, v)
		if !ok {
			w.mismatch(n, v, path)
			return nil
		}
		if !w.refine(n, cv, path, true) {
			return nil
		}
		return out
	case KindLiteral:
		if !literalEqual(v, n.literal) {
			exp := formatValue(n.literal)
			w.report(path.Issue(skema.CodeLiteralMismatch,
				i18n.T(skema.CodeLiteralMismatch, map[string]string{"expected": exp}),
				"expected", n.literal, "received", typeName(v)))
			return nil
		}
		if !w.refine(n, v, path, true) {
			return nil
		}
		return v
	case KindEnum:
		for _, o := range n.options {
			if literalEqual(v, o) {
				if !w.refine(n, v, path, true) {
					return nil
				}
				return v
			}
		}
		opts := formatValues(n.options)
		w.report(path.Issue(skema.CodeEnumMismatch,
			i18n.T(skema.CodeEnumMismatch, map[string]string{"options": opts, "received": receivedValue(v)}),
			"options", n.options, "received", v))
		return nil
	case KindObject:
		return w.object(n, v, path)
	case KindArray:
		return w.array(n, v, path)
	case KindTuple:
		return w.tuple(n, v, path)
	case KindDiscriminatedUnion:
		return w.discriminated(n, v, path)
	case KindRecord:
		return w.record(n, v, path)
	case KindMap:
		return w.mapEntries(n, v, path)
	}
	return v
}

// wrapper handles Optional, Nullable, Nullish and Default: the presence and
// null rules of the wrapper first, then the inner descriptor.
func (w *walker) wrapper(n *node, v any, path skema.Path) any {
	switch {
	case skema.IsUndefined(v) && (n.kind == KindOptional || n.kind == KindNullish):
		return skema.Undefined
	case v == nil && (n.kind == KindNullable || n.kind == KindNullish):
		return nil
	case skema.IsUndefined(v) && n.kind == KindDefault:
		v = derefDefault(n.defaultFn())
		if w.presence != nil {
			w.presence.Mark(path, skema.PresenceDefaultApplied)
		}
	}
	before := len(w.issues)
	out := w.walk(n.inner, v, path)
	if len(w.issues) > before || !w.refine(n, out, path, true) {
		return nil
	}
	return out
}

// derefDefault unwraps defaults declared on pointer-typed descriptors such as
// As[*string](String().Nullable()). Struct pointers (ordered maps) are values.
func derefDefault(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Type().Elem().Kind() == reflect.Struct {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func (w *walker) mismatch(n *node, v any, path skema.Path) {
	exp, got := expected(n), typeName(v)
	w.report(path.Issue(skema.CodeTypeMismatch,
		i18n.T(skema.CodeTypeMismatch, map[string]string{"expected": exp, "received": got}),
		"expected", exp, "received", got))
}

// refine applies n's checks in order and stops at the first failure. When
// clean is false only structural checks run.
func (w *walker) refine(n *node, v any, path skema.Path, clean bool) bool {
	for _, c := range n.checks {
		if !clean && !c.structural {
			continue
		}
		if !c.test(v) {
			w.report(c.issue(path))
			return false
		}
	}
	return true
}

func (w *walker) object(n *node, v any, path skema.Path) any {
	src, ok := asObject(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	before := len(w.issues)
	out := newObjectOut(src.ordered, len(n.fields))
	for _, f := range n.fields {
		if w.stopped() {
			return nil
		}
		fp := path.Field(f.name)
		fv, present := src.get(f.name)
		if !present {
			fv = skema.Undefined
		}
		w.seen(fp, fv)
		res := w.walk(f.n, fv, fp)
		if !skema.IsUndefined(res) {
			out.set(f.name, res)
		}
	}
	if n.unknown != skema.UnknownStrip {
		for _, k := range src.keys() {
			if _, declared := n.fieldIndex[k]; declared {
				continue
			}
			if n.unknown == skema.UnknownPassthrough {
				raw, _ := src.get(k)
				out.set(k, raw)
				continue
			}
			if w.stopped() {
				return nil
			}
			w.report(path.Field(k).Issue(skema.CodeUnrecognizedKey,
				i18n.T(skema.CodeUnrecognizedKey, map[string]string{"key": strconv.Quote(k)}),
				"key", k))
		}
	}
	if len(w.issues) > before {
		return nil
	}
	res := out.value()
	if !w.refine(n, res, path, true) || !w.applyRules(n, res, path) {
		return nil
	}
	return res
}

// applyRules runs the object's rules against the plain form of res. Every
// rule runs unless fail-fast is on.
func (w *walker) applyRules(n *node, res any, path skema.Path) bool {
	if len(n.rules) == 0 {
		return true
	}
	obj, _ := plain(res).(map[string]any)
	before := len(w.issues)
	for _, r := range n.rules {
		if w.stopped() {
			break
		}
		w.issues = append(w.issues, r(w.ctx, obj, path)...)
	}
	return len(w.issues) == before
}

func (w *walker) array(n *node, v any, path skema.Path) any {
	items, ok := asSlice(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	before := len(w.issues)
	out := make([]any, len(items))
	for i, e := range items {
		if w.stopped() {
			return nil
		}
		ip := path.Index(i)
		w.seen(ip, e)
		out[i] = w.walk(n.elem, e, ip)
	}
	clean := len(w.issues) == before
	if !w.refine(n, out, path, clean) || !clean {
		return nil
	}
	return out
}

func (w *walker) tuple(n *node, v any, path skema.Path) any {
	items, ok := asSlice(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	if len(items) != len(n.items) {
		exp, got := strconv.Itoa(len(n.items)), strconv.Itoa(len(items))
		w.report(path.Issue(skema.CodeTupleLengthMismatch,
			i18n.T(skema.CodeTupleLengthMismatch, map[string]string{"expected": exp, "received": got}),
			"expected", len(n.items), "received", len(items)))
		return nil
	}
	before := len(w.issues)
	out := make([]any, len(items))
	for i, e := range items {
		if w.stopped() {
			return nil
		}
		ip := path.Index(i)
		w.seen(ip, e)
		out[i] = w.walk(n.items[i], e, ip)
	}
	if len(w.issues) > before || !w.refine(n, out, path, true) {
		return nil
	}
	return out
}

func (w *walker) union(n *node, v any, path skema.Path) any {
	failures := make([]skema.Issues, 0, len(n.candidates))
	for i, c := range n.candidates {
		s := w.sub()
		out := s.walk(c, v, path)
		if len(s.issues) == 0 {
			if w.presence != nil {
				w.adoptPresence(s)
			}
			if !w.refine(n, out, path, true) {
				return nil
			}
			w.log.Debug().Str("path", path.String()).Int("candidate", i).Msg("union candidate matched")
			return out
		}
		failures = append(failures, s.issues)
	}
	w.log.Debug().Str("path", path.String()).Int("candidates", len(failures)).Msg("no union candidate matched")
	switch {
	case skema.IsUndefined(v):
		w.report(path.Issue(skema.CodeRequiredButMissing, i18n.T(skema.CodeRequiredButMissing, nil)))
		return nil
	case v == nil:
		w.report(path.Issue(skema.CodeNullNotAllowed,
			i18n.T(skema.CodeNullNotAllowed, map[string]string{"expected": expected(n)}),
			"expected", expected(n)))
		return nil
	}
	it := path.Issue(skema.CodeNoUnionMemberMatched,
		i18n.T(skema.CodeNoUnionMemberMatched, map[string]string{"count": strconv.Itoa(len(failures))}),
		"candidates", len(failures))
	it.Inner = failures
	w.report(it)
	return nil
}

func (w *walker) discriminated(n *node, v any, path skema.Path) any {
	src, ok := asObject(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	var branch *node
	dv, present := src.get(n.discriminator)
	if present {
		if k, ok := literalKey(dv); ok {
			branch = n.branches[k]
		}
	}
	if branch == nil {
		opts := formatValues(n.branchKeys)
		got := "undefined"
		if present {
			got = receivedValue(dv)
		}
		w.log.Debug().Str("path", path.String()).Str("discriminator", n.discriminator).Str("value", got).Msg("unknown discriminator")
		w.report(path.Field(n.discriminator).Issue(skema.CodeUnknownDiscriminator,
			i18n.T(skema.CodeUnknownDiscriminator, map[string]string{"options": opts, "received": got}),
			"options", n.branchKeys, "discriminator", n.discriminator))
		return nil
	}
	before := len(w.issues)
	out := w.walk(branch, v, path)
	if len(w.issues) > before || !w.refine(n, out, path, true) {
		return nil
	}
	return out
}

func (w *walker) record(n *node, v any, path skema.Path) any {
	src, ok := asObject(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	before := len(w.issues)
	out := newObjectOut(src.ordered, 0)
	for _, k := range src.keys() {
		if w.stopped() {
			return nil
		}
		kp := path.Field(k)
		raw, _ := src.get(k)
		w.seen(kp, raw)
		ko, kok := w.entryKey(n, k, kp)
		vo, vok := w.entryValue(n, raw, kp, k)
		if kok && vok {
			ks, isStr := ko.(string)
			if !isStr {
				ks = k
			}
			out.set(ks, vo)
		}
	}
	if len(w.issues) > before || !w.refine(n, out.value(), path, true) {
		return nil
	}
	return out.value()
}

func (w *walker) mapEntries(n *node, v any, path skema.Path) any {
	entries, ok := asEntries(v)
	if !ok {
		w.mismatch(n, v, path)
		return nil
	}
	before := len(w.issues)
	out := orderedmap.New[any, any]()
	for _, e := range entries {
		if w.stopped() {
			return nil
		}
		kp := path.Key(e.k)
		w.seen(kp, e.v)
		ko, kok := w.entryKey(n, e.k, kp)
		vo, vok := w.entryValue(n, e.v, kp, e.k)
		if kok && vok {
			out.Set(ko, vo)
		}
	}
	if len(w.issues) > before || !w.refine(n, out, path, true) {
		return nil
	}
	return out
}

// entryKey validates a record/map key. Key failures are reported as one
// record_key_invalid issue carrying the key descriptor's issues.
func (w *walker) entryKey(n *node, k any, kp skema.Path) (any, bool) {
	s := w.sub()
	out := s.walk(n.key, k, kp)
	if len(s.issues) == 0 {
		return out, true
	}
	key := formatValue(k)
	it := kp.Issue(skema.CodeRecordKeyInvalid,
		i18n.T(skema.CodeRecordKeyInvalid, map[string]string{"key": key}), "key", k)
	it.Inner = []skema.Issues{s.issues}
	w.report(it)
	return nil, false
}

// entryValue validates a record/map value. Failures are reported as one
// record_value_invalid issue at the entry path carrying the value's issues.
func (w *walker) entryValue(n *node, v any, kp skema.Path, k any) (any, bool) {
	s := w.sub()
	out := s.walk(n.value, v, kp)
	if len(s.issues) == 0 {
		if w.presence != nil {
			w.adoptPresence(s)
		}
		return out, true
	}
	key := formatValue(k)
	it := kp.Issue(skema.CodeRecordValueInvalid,
		i18n.T(skema.CodeRecordValueInvalid, map[string]string{"key": key}), "key", k)
	it.Inner = []skema.Issues{s.issues}
	w.report(it)
	return nil, false
}

// expected names what n accepts, for type_mismatch and null_not_allowed.
func expected(n *node) string {
	switch n.kind {
	case KindLiteral:
		return formatValue(n.literal)
	case KindEnum:
		return formatValues(n.options)
	case KindDiscriminatedUnion, KindRecord:
		return "object"
	case KindTuple:
		return "array"
	case KindOptional, KindNullable, KindNullish, KindDefault:
		return expected(n.inner)
	case KindUnion:
		parts := make([]string, 0, len(n.candidates))
		for _, c := range n.candidates {
			parts = append(parts, expected(c))
		}
		return strings.Join(parts, " | ")
	}
	return n.kind.String()
}

// receivedValue renders an offending scalar, or its type name otherwise.
func receivedValue(v any) string {
	if _, ok := literalKey(v); ok {
		return formatValue(v)
	}
	return typeName(v)
}
