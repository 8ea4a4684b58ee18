package string

import (
	"strings"
	"unicode"
)

func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

func TrimSlice(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

// ToSnakeCase converts camelCase, PascalCase, kebab-case and space separated
// words to snake_case. Already snake_cased input is returned unchanged, so the
// conversion is idempotent.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(s))
	// true at the start so leading separators are dropped
	afterSeparator := true
	for i, r := range runes {
		if isSeparator(r) {
			if !afterSeparator {
				b.WriteByte('_')
				afterSeparator = true
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && !afterSeparator &&
			(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		afterSeparator = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// IsWordLike reports whether s contains at least one letter, digit or
// underscore. Purely symbolic tokens such as "=" or "!=" are not word-like.
func IsWordLike(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}
