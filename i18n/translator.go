// Package i18n renders human-readable messages for validation codes.
package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "segment" or "reference").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"conditional_required_data_element_missing": "conditionally required data element missing",
		"conditional_required_segment_missing":      "conditionally required segment {segment} missing",
		"exclusion_condition_violated":              "exclusion condition violated",
		"segment_exclusion_condition_violated":      "segment {segment} violates an exclusion condition",
		"required_data_element_missing":             "mandatory data element missing",
		"too_many_data_elements":                    "too many data elements",
		"too_many_components":                       "too many components",
		"too_many_repetitions":                      "too many repetitions",
		"data_element_too_long":                     "data element too long",
		"data_element_too_short":                    "data element too short",
		"segment_not_in_definition":                 "segment {segment} not in definition",
		"unexpected_trailer":                        "trailer without matching header under {path}",
		"missing_trailer":                           "envelope {path} is not closed",
		"control_number_mismatch":                   "envelope {path} control reference mismatch",
		"control_count_mismatch":                    "envelope {path} control count mismatch",
	},
	"ja": {
		"conditional_required_data_element_missing": "条件付き必須データ要素が不足しています",
		"conditional_required_segment_missing":      "条件付き必須セグメント {segment} が不足しています",
		"exclusion_condition_violated":              "排他条件に違反しています",
		"segment_exclusion_condition_violated":      "セグメント {segment} が排他条件に違反しています",
		"required_data_element_missing":             "必須データ要素が不足しています",
		"too_many_data_elements":                    "データ要素が多すぎます",
		"too_many_components":                       "構成要素が多すぎます",
		"too_many_repetitions":                      "繰り返しが多すぎます",
		"data_element_too_long":                     "データ要素が長すぎます",
		"data_element_too_short":                    "データ要素が短すぎます",
		"segment_not_in_definition":                 "セグメント {segment} は定義にありません",
		"unexpected_trailer":                        "{path} に対応するヘッダーのないトレーラーがあります",
		"missing_trailer":                           "エンベロープ {path} が閉じられていません",
		"control_number_mismatch":                   "エンベロープ {path} の制御番号が一致しません",
		"control_count_mismatch":                    "エンベロープ {path} の制御件数が一致しません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return strings.TrimSpace(strings.ReplaceAll(msg, "  ", " "))
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
