package scanlog

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

var slugArgs = pinyin.NewArgs()

// Slugify derives a ScanObject value from its display name: Han characters
// become pinyin syllables, letters and digits are lowercased, and every
// token is joined with "_".
func Slugify(name string) string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, pinyin.LazyPinyin(string(r), slugArgs)...)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(unicode.ToLower(r))
		case r == '-':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return strings.Join(tokens, "_")
}

// NormalizeBarcode strips the whitespace and line endings scanners append.
func NormalizeBarcode(code string) string {
	return strings.TrimSpace(code)
}

// NormalizeText collapses runs of whitespace into single spaces.
func NormalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
