// Package dsl declares skema descriptors and evaluates values against them.
//
// Overview
//   - Primitives: String(), Number(), Int(), Bool(), Date(), Any().
//   - Literals and enums: Literal(v), Enum(values...), NativeEnum(map).
//   - Wrappers: Optional(), Nullable(), Nullish(), Default(v), DefaultFunc(fn).
//   - Composites: Object(F(...)...), Array(elem), Tuple(items...), Union(...),
//     DiscriminatedUnion(field, branches...), Record(value), RecordOf(key, value),
//     Map(key, value).
//   - Object builders: Strict/Strip/Passthrough, Pick/Omit, Partial/DeepPartial,
//     Extend/Merge. Each returns a new descriptor; the receiver is unchanged.
//
// Every descriptor is a Type[T]. Validate returns a skema.Outcome holding the
// normalized value (map[string]any, []any, scalars as given) or the full list
// of issues. Parse additionally converts the value into T; As[U] rebinds T,
// for example to a struct decoded through its `json` tags.
//
// Evaluation order
//
// Presence comes first (absent, then null), then the type match, then
// refinements in declaration order. Refinements stop at the first failure
// and are skipped when a nested value failed, except array length checks.
// Object fields are visited in declaration order, unknown keys in input
// order (sorted order for plain Go maps).
//
// Example
//
//	user := dsl.Object(
//	    dsl.F("id", dsl.String().UUID()),
//	    dsl.F("age", dsl.Number().Int().Gte(0).Optional()),
//	    dsl.F("role", dsl.Enum("admin", "member").Default("member")),
//	).Strict()
//
//	type User struct {
//	    ID   string `json:"id"`
//	    Age  int    `json:"age"`
//	    Role string `json:"role"`
//	}
//	u, err := dsl.As[User](user).Parse(ctx, input)
//	_ = u
//	var iss skema.Issues
//	if errors.As(err, &iss) {
//	    for _, it := range iss {
//	        fmt.Println(it.Path, it.Code, it.Message)
//	    }
//	}
//
// JSON Schema
//
//	sch, _ := user.JSONSchema()
//	// Strict => additionalProperties=false; Optional/Default fields are not required.
package dsl
