package str

import (
	"strings"
	"unicode"
)

// ColumnName converts a species name into a lower-case column name made of
// letters, digits and underscores.
func ColumnName(name string) string {
	var b strings.Builder
	var sep bool
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		sep = true
	}
	res := b.String()
	if res != "" && unicode.IsDigit(rune(res[0])) {
		res = "sp_" + res
	}
	return res
}

// QuoteIdent adds double quotes around an SQL identifier and escapes
// any double quotes.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FieldIndex returns the position of the first header field that matches
// one of the names, ignoring case and surrounding spaces. It returns -1 if
// nothing matches.
func FieldIndex(header []string, names ...string) int {
	for _, n := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), n) {
				return i
			}
		}
	}
	return -1
}

// IsMissing checks if a value denotes absent data.
func IsMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}
