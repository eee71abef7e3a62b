package synthesis

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
)

// repairPass is one named textual repair applied to a span that failed the
// strict parse. Passes run in a fixed order and each must be safe on already
// well-formed JSON.
type repairPass struct {
	name  string
	apply func(string) string
}

var repairPasses = []repairPass{
	{"escape-control-chars", escapeControlCharsInStrings},
	{"insert-missing-comma", insertMissingCommaBeforeCitations},
	{"strip-trailing-commas", stripTrailingCommas},
}

func applyRepairs(span string) string {
	for _, p := range repairPasses {
		repaired := p.apply(span)
		if repaired != span {
			log.Debug("repair pass changed model output", "pass", p.name)
		}
		span = repaired
	}
	return span
}

// escapeControlCharsInStrings re-escapes raw newlines, carriage returns, and
// tabs that appear inside quoted string literals. The scan is quote-aware
// with backslash handling so structural whitespace is left untouched.
func escapeControlCharsInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString, escaped := false, false
	for _, r := range s {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = false
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// A closing string quote directly followed by a "citations" key, with only
// whitespace between, is a common truncation artifact: the comma after the
// text field went missing.
var missingCommaRX = regexp.MustCompile(`"(\s*)"citations"`)

func insertMissingCommaBeforeCitations(s string) string {
	return missingCommaRX.ReplaceAllString(s, `",$1"citations"`)
}

// stripTrailingCommas drops commas that directly precede a closing brace or
// bracket, outside of string literals.
func stripTrailingCommas(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			b.WriteRune(r)
			continue
		}
		if r == '"' {
			inString = true
			b.WriteRune(r)
			continue
		}
		if r == ',' {
			j := i + 1
			for j < len(rs) && unicode.IsSpace(rs[j]) {
				j++
			}
			if j < len(rs) && (rs[j] == '}' || rs[j] == ']') {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
