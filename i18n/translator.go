package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "got"). Placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"unsupported_type":   "unsupported dtype {type}",
		"schema_mismatch":    "expected {expected}, got {got}",
		"cast_overflow":      "could not cast {value} ({from}) into {to}",
		"irregular_shape":    "irregular shape found, cannot decode as {dtype} array: expected shape {expected}, total elements {total}",
		"sequence_exhausted": "too many columns specified: expected at least {expected} elements, got {got}",
		"missing_keys":       "key(s) not found: {keys}",
		"duplicate_key":      "duplicate key {key}",
		"parse_error":        "parse error",
		"truncated":          "truncated",
	},
	"ja": {
		"unsupported_type":   "未対応の dtype です: {type}",
		"schema_mismatch":    "{expected} を期待しましたが {got} でした",
		"cast_overflow":      "{value} ({from}) を {to} に変換できません",
		"irregular_shape":    "不規則な形状のため {dtype} 配列として復号できません: 期待形状 {expected}, 要素数 {total}",
		"sequence_exhausted": "列の指定が多すぎます: {expected} 要素以上を期待しましたが {got} 要素でした",
		"missing_keys":       "キーが見つかりません: {keys}",
		"duplicate_key":      "キーが重複しています: {key}",
		"parse_error":        "解析エラー",
		"truncated":          "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogue[t.lang][code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders; unknown placeholders stay verbatim.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
