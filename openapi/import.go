package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
)

// ImportOptions controls Import.
type ImportOptions struct {
	// Unknown is the policy for objects that do not say otherwise. Objects
	// with additionalProperties: false are always strict and objects with
	// x-kubernetes-preserve-unknown-fields: true always pass through.
	Unknown skema.UnknownPolicy
	// ApplyDefaults turns schema defaults into Default wrappers. Otherwise
	// fields with a default are merely optional.
	ApplyDefaults bool
}

// Diag carries non-fatal warnings produced during import.
type Diag struct {
	Warnings []string
}

// HasWarnings reports whether any keyword was ignored.
func (d *Diag) HasWarnings() bool { return len(d.Warnings) > 0 }

func (d *Diag) warnf(path, f string, a ...any) {
	if path == "" {
		path = "/"
	}
	d.Warnings = append(d.Warnings, path+": "+fmt.Sprintf(f, a...))
}

// Import builds a descriptor from an OpenAPI 3.0 schema. schema may be a
// *openapi3.Schema, raw JSON bytes, or a decoded map. Kubernetes CRD
// documents are unwrapped to their served openAPIV3Schema. Local $ref
// pointers into #/components/schemas, #/definitions and #/$defs are
// resolved; recursive references are rejected.
func Import(schema any, opts ImportOptions) (g.Type[any], *Diag, error) {
	d := &Diag{}
	root, err := toMap(schema)
	if err != nil {
		return g.Type[any]{}, d, err
	}
	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if crd := unwrapCRDSchema(root); crd != nil {
		root = crd
	}
	im := &importer{opts: opts, diag: d, root: root, active: map[string]bool{}}
	t, err := im.schema(root, "")
	if err != nil {
		return g.Type[any]{}, d, err
	}
	return t, d, nil
}

func toMap(schema any) (map[string]any, error) {
	var raw []byte
	switch t := schema.(type) {
	case nil:
		return nil, errors.New("openapi: nil schema")
	case map[string]any:
		return t, nil
	case []byte:
		raw = t
	case *openapi3.Schema:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("openapi: marshal schema: %w", err)
		}
		raw = b
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("openapi: cannot marshal input: %w", err)
		}
		raw = b
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("openapi: invalid JSON: %w", err)
	}
	return m, nil
}

// unwrapCRDSchema extracts openAPIV3Schema from a Kubernetes CRD document,
// preferring the first served version.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	var first map[string]any
	vers, _ := spec["versions"].([]any)
	for _, v := range vers {
		vm, _ := v.(map[string]any)
		sch, _ := vm["schema"].(map[string]any)
		oas, ok := sch["openAPIV3Schema"].(map[string]any)
		if !ok {
			continue
		}
		if served, ok := vm["served"].(bool); !ok || served {
			return oas
		}
		if first == nil {
			first = oas
		}
	}
	if first != nil {
		return first
	}
	// legacy: spec.validation.openAPIV3Schema
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

type importer struct {
	opts   ImportOptions
	diag   *Diag
	root   map[string]any
	active map[string]bool // $refs being expanded
}

var unsupported = []string{"allOf", "not", "if", "then", "else", "patternProperties", "dependentRequired", "x-kubernetes-validations"}

func (im *importer) schema(s map[string]any, path string) (g.Type[any], error) {
	if ref, ok := s["$ref"].(string); ok {
		return im.ref(ref, path)
	}
	for _, k := range unsupported {
		if _, ok := s[k]; ok {
			im.diag.warnf(path, "%s is not supported and was ignored", k)
		}
	}
	t, err := im.base(s, path)
	if err != nil {
		return t, err
	}
	if desc, ok := s["description"].(string); ok && desc != "" {
		t = t.Describe(desc)
	}
	if s["nullable"] == true || typeList(s)["null"] {
		t = t.Nullable()
	}
	return t, nil
}

func (im *importer) ref(ref, path string) (g.Type[any], error) {
	if im.active[ref] {
		return g.Type[any]{}, fmt.Errorf("openapi: recursive $ref %q at %s", ref, path)
	}
	target, ok := resolvePointer(im.root, ref)
	if !ok {
		return g.Type[any]{}, fmt.Errorf("openapi: unresolved $ref %q at %s", ref, path)
	}
	im.active[ref] = true
	defer delete(im.active, ref)
	return im.schema(target, path)
}

func resolvePointer(root map[string]any, ref string) (map[string]any, bool) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}
	var cur any = root
	for _, seg := range skema.ParsePointer(strings.TrimPrefix(ref, "#")) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		key, ok := seg.(string)
		if !ok {
			key = fmt.Sprint(seg)
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	out, ok := cur.(map[string]any)
	return out, ok
}

func (im *importer) base(s map[string]any, path string) (g.Type[any], error) {
	if s["x-kubernetes-int-or-string"] == true {
		return g.Union(g.Int(), g.String()), nil
	}
	if enum, ok := s["enum"].([]any); ok && len(enum) > 0 {
		return im.enum(enum, path), nil
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		if list, ok := s[key].([]any); ok && len(list) > 0 {
			cands := make([]g.Descriptor, 0, len(list))
			for i, c := range list {
				cm, ok := c.(map[string]any)
				if !ok {
					return g.Type[any]{}, fmt.Errorf("openapi: %s/%s/%d is not a schema", path, key, i)
				}
				ct, err := im.schema(cm, fmt.Sprintf("%s/%s/%d", path, key, i))
				if err != nil {
					return g.Type[any]{}, err
				}
				cands = append(cands, ct)
			}
			if key == "oneOf" {
				im.diag.warnf(path, "oneOf is imported as a first-match union")
			}
			return g.Union(cands...), nil
		}
	}

	typ, _ := s["type"].(string)
	for name := range typeList(s) {
		if name != "null" {
			typ = name
		}
	}
	if typ == "" {
		switch {
		case s["properties"] != nil || s["additionalProperties"] != nil:
			typ = "object"
		case s["items"] != nil:
			typ = "array"
		}
	}
	switch typ {
	case "string":
		return im.str(s, path), nil
	case "integer":
		return g.As[any](im.num(s, g.Int())), nil
	case "number":
		return g.As[any](im.num(s, g.Number())), nil
	case "boolean":
		return g.As[any](g.Bool()), nil
	case "array":
		return im.array(s, path)
	case "object":
		return im.object(s, path)
	case "":
		return g.Any(), nil
	}
	return g.Type[any]{}, fmt.Errorf("openapi: unknown type %q at %s", typ, path)
}

func (im *importer) enum(values []any, path string) g.Type[any] {
	opts := make([]any, 0, len(values))
	for _, v := range values {
		switch v.(type) {
		case map[string]any, []any:
			im.diag.warnf(path, "composite enum value %v was ignored", v)
			continue
		}
		opts = append(opts, v)
	}
	if len(opts) == 0 {
		return g.Any()
	}
	return g.As[any](g.Enum(opts...))
}

func (im *importer) str(s map[string]any, path string) g.Type[any] {
	t := g.String()
	if n, ok := intKeyword(s, "minLength"); ok {
		t = t.Min(n)
	}
	if n, ok := intKeyword(s, "maxLength"); ok {
		t = t.Max(n)
	}
	if p, ok := s["pattern"].(string); ok {
		re, err := regexp.Compile(p)
		if err != nil {
			im.diag.warnf(path, "pattern %q does not compile: %v", p, err)
		} else {
			t = t.Regex(re)
		}
	}
	switch f, _ := s["format"].(string); f {
	case "", "byte", "binary", "password":
	case "email":
		t = t.Email()
	case "uuid":
		t = t.UUID()
	case "uri", "url":
		t = t.URL()
	default:
		im.diag.warnf(path, "format %q is not enforced", f)
	}
	return g.As[any](t)
}

func (im *importer) num(s map[string]any, t g.NumberType) g.NumberType {
	// 3.0 writes exclusive bounds as booleans next to minimum/maximum; 3.1
	// and JSON Schema write the bound itself.
	if v, ok := s["minimum"].(float64); ok {
		if s["exclusiveMinimum"] == true {
			t = t.Gt(v)
		} else {
			t = t.Gte(v)
		}
	}
	if v, ok := s["exclusiveMinimum"].(float64); ok {
		t = t.Gt(v)
	}
	if v, ok := s["maximum"].(float64); ok {
		if s["exclusiveMaximum"] == true {
			t = t.Lt(v)
		} else {
			t = t.Lte(v)
		}
	}
	if v, ok := s["exclusiveMaximum"].(float64); ok {
		t = t.Lt(v)
	}
	if v, ok := s["multipleOf"].(float64); ok && v > 0 {
		t = t.MultipleOf(v)
	}
	return t
}

func (im *importer) array(s map[string]any, path string) (g.Type[any], error) {
	elem := g.Any()
	if items, ok := s["items"].(map[string]any); ok {
		var err error
		if elem, err = im.schema(items, path+"/items"); err != nil {
			return g.Type[any]{}, err
		}
	}
	t := g.Array(elem)
	if n, ok := intKeyword(s, "minItems"); ok {
		t = t.Min(n)
	}
	if n, ok := intKeyword(s, "maxItems"); ok {
		t = t.Max(n)
	}
	if s["uniqueItems"] == true || s["x-kubernetes-list-type"] == "set" {
		t = t.Refine(distinct, "items must be unique")
	}
	return g.As[any](t), nil
}

func distinct(items []any) bool {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if reflect.DeepEqual(items[i], items[j]) {
				return false
			}
		}
	}
	return true
}

func (im *importer) object(s map[string]any, path string) (g.Type[any], error) {
	props, _ := s["properties"].(map[string]any)
	ap := s["additionalProperties"]

	// A map without declared properties.
	if apm, ok := ap.(map[string]any); ok && len(props) == 0 {
		val, err := im.schema(apm, path+"/additionalProperties")
		if err != nil {
			return g.Type[any]{}, err
		}
		return g.As[any](g.Record(val)), nil
	}

	required := map[string]bool{}
	if req, ok := s["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]g.Field, 0, len(names))
	for _, name := range names {
		ps, ok := props[name].(map[string]any)
		if !ok {
			return g.Type[any]{}, fmt.Errorf("openapi: %s/properties/%s is not a schema", path, name)
		}
		ft, err := im.schema(ps, path+"/properties/"+name)
		if err != nil {
			return g.Type[any]{}, err
		}
		fields = append(fields, g.F(name, im.presence(ft, ps, required[name])))
	}
	for name := range required {
		if _, ok := props[name]; !ok {
			im.diag.warnf(path, "required property %q is not declared", name)
		}
	}

	obj := g.Object(fields...)
	switch {
	case s["x-kubernetes-preserve-unknown-fields"] == true:
		obj = obj.Passthrough()
	case ap == false:
		obj = obj.Strict()
	case ap == true:
		obj = obj.Passthrough()
	default:
		if _, ok := ap.(map[string]any); ok {
			im.diag.warnf(path, "additionalProperties schema next to properties is not enforced")
		}
		switch im.opts.Unknown {
		case skema.UnknownStrict:
			obj = obj.Strict()
		case skema.UnknownPassthrough:
			obj = obj.Passthrough()
		}
	}
	return g.As[any](obj), nil
}

func (im *importer) presence(t g.Type[any], s map[string]any, required bool) g.Descriptor {
	def, hasDefault := s["default"]
	switch {
	case hasDefault && im.opts.ApplyDefaults:
		return t.Default(def)
	case required:
		return t
	}
	return t.Optional()
}

// typeList returns the members of a list-valued type keyword.
func typeList(s map[string]any) map[string]bool {
	list, ok := s["type"].([]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(list))
	for _, t := range list {
		if name, ok := t.(string); ok {
			out[name] = true
		}
	}
	return out
}

func intKeyword(s map[string]any, key string) (int, bool) {
	f, ok := s[key].(float64)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
