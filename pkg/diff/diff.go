package diff

import (
	"unicode"

	"github.com/aryann/difflib"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// WordDelta is one run of a word-level diff between two strings.
type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Words diffs two strings at word granularity. Whitespace and punctuation
// runs are tokens of their own, so the deltas reassemble to the inputs.
func Words(a, b string) []WordDelta {
	recs := difflib.Diff(tokenize(a), tokenize(b))
	out := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			out = append(out, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			out = append(out, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			out = append(out, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return out
}

// tokenize splits a string into runs of the same character class
// (whitespace, word, punctuation).
func tokenize(s string) []string {
	var out []string
	var cur []rune
	kind := -1 // 0=space,1=word,2=punct
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := 2
		switch {
		case unicode.IsSpace(r):
			k = 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
			k = 1
		}
		if kind == -1 {
			kind = k
		}
		if k != kind {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
