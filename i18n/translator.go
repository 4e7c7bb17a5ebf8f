package i18n

import "strings"

// Translator retrieves localized messages for issue codes and refinement
// message keys. data provides values for {placeholders} in the message (for
// example "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"required_but_missing":    "required",
		"null_not_allowed":        "expected {expected}, received null",
		"type_mismatch":           "expected {expected}, received {received}",
		"refinement_failed":       "invalid input",
		"literal_mismatch":        "invalid literal value, expected {expected}",
		"enum_mismatch":           "invalid enum value, expected one of {options}, received {received}",
		"unrecognized_key":        "unrecognized key {key}",
		"tuple_length_mismatch":   "expected tuple of length {expected}, received {received}",
		"no_union_member_matched": "no union member matched ({count} candidates failed)",
		"unknown_discriminator":   "invalid discriminator value {received}, expected one of {options}",
		"record_key_invalid":      "invalid key {key}",
		"record_value_invalid":    "invalid value for key {key}",
		"duplicate_value":         "duplicate value {key}",

		"array.min":      "array must contain at least {min} element(s)",
		"array.max":      "array must contain at most {max} element(s)",
		"array.length":   "array must contain exactly {length} element(s)",
		"array.nonempty": "array must not be empty",

		"string.min":        "must contain at least {min} character(s)",
		"string.max":        "must contain at most {max} character(s)",
		"string.length":     "must contain exactly {length} character(s)",
		"string.regex":      "must match pattern {pattern}",
		"string.email":      "invalid email",
		"string.uuid":       "invalid uuid",
		"string.url":        "invalid url",
		"string.startsWith": "must start with {prefix}",
		"string.endsWith":   "must end with {suffix}",

		"number.gt":         "must be greater than {value}",
		"number.gte":        "must be greater than or equal to {value}",
		"number.lt":         "must be less than {value}",
		"number.lte":        "must be less than or equal to {value}",
		"number.int":        "expected integer, received float",
		"number.multipleOf": "must be a multiple of {value}",
		"number.finite":     "must be finite",

		"date.min": "must be on or after {value}",
		"date.max": "must be on or before {value}",
	},
	"ja": {
		"required_but_missing":    "必須です",
		"null_not_allowed":        "{expected} が必要ですが null が渡されました",
		"type_mismatch":           "型が不正です ({expected} が必要ですが {received} が渡されました)",
		"refinement_failed":       "入力が不正です",
		"literal_mismatch":        "リテラル値が不正です ({expected} が必要です)",
		"enum_mismatch":           "列挙値が不正です ({options} のいずれかが必要ですが {received} が渡されました)",
		"unrecognized_key":        "未知のキーです: {key}",
		"tuple_length_mismatch":   "タプルの長さが不正です ({expected} が必要ですが {received} でした)",
		"no_union_member_matched": "どのユニオン候補にも一致しません ({count} 件の候補が失敗)",
		"unknown_discriminator":   "判別子の値 {received} が不正です ({options} のいずれかが必要です)",
		"record_key_invalid":      "キー {key} が不正です",
		"record_value_invalid":    "キー {key} の値が不正です",
		"duplicate_value":         "値 {key} が重複しています",

		"array.min":      "要素は {min} 個以上必要です",
		"array.max":      "要素は {max} 個以下にしてください",
		"array.length":   "要素はちょうど {length} 個必要です",
		"array.nonempty": "配列は空にできません",

		"string.min":        "{min} 文字以上必要です",
		"string.max":        "{max} 文字以下にしてください",
		"string.length":     "ちょうど {length} 文字必要です",
		"string.regex":      "パターン {pattern} に一致しません",
		"string.email":      "メールアドレスが不正です",
		"string.uuid":       "UUID が不正です",
		"string.url":        "URL が不正です",
		"string.startsWith": "{prefix} で始まる必要があります",
		"string.endsWith":   "{suffix} で終わる必要があります",

		"number.gt":         "{value} より大きい必要があります",
		"number.gte":        "{value} 以上である必要があります",
		"number.lt":         "{value} より小さい必要があります",
		"number.lte":        "{value} 以下である必要があります",
		"number.int":        "整数が必要です",
		"number.multipleOf": "{value} の倍数である必要があります",
		"number.finite":     "有限の数値が必要です",

		"date.min": "{value} 以降である必要があります",
		"date.max": "{value} 以前である必要があります",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		if msg, ok = dictionaries["en"][code]; !ok {
			return code
		}
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders with data values.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
