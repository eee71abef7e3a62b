package synthesis

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

// maxCitations bounds how many chunk ids a single sentence may carry. More
// than two overlapping citations rarely adds information for one short
// sentence and crowds the reading surface.
const maxCitations = 2

// Normalize validates raw candidates against the window's id set: text is
// coerced to a string and trimmed (empty sentences are dropped), citations
// are coerced to integers, filtered to ids present in allowed, and truncated
// to the first two survivors. Citation order is preserved at this stage.
func Normalize(cands []Candidate, allowed map[int]bool) []schema.SummarySentence {
	out := make([]schema.SummarySentence, 0, len(cands))
	for _, c := range cands {
		text := strings.TrimSpace(coerceText(c.Text))
		if text == "" {
			continue
		}
		out = append(out, schema.SummarySentence{
			Text:      text,
			Citations: coerceCitations(c.Citations, allowed),
		})
	}
	return out
}

func coerceText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceCitations always yields nil, never an empty slice, when no citation
// survives, so "no citations" has one representation throughout the pipeline.
func coerceCitations(v any, allowed map[int]bool) []int {
	if v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	out := make([]int, 0, maxCitations)
	for _, it := range items {
		id, ok := coerceInt(it)
		if !ok || !allowed[id] {
			continue
		}
		out = append(out, id)
		if len(out) == maxCitations {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Dedupe drops every sentence whose whitespace-collapsed text already
// appeared earlier, citations included. Kept sentences get their citation
// list deduplicated, sorted ascending, and re-capped. Dedupe is idempotent.
func Dedupe(in []schema.SummarySentence) []schema.SummarySentence {
	seen := make(map[string]bool, len(in))
	out := make([]schema.SummarySentence, 0, len(in))
	for _, s := range in {
		key := utils.CollapseWhitespace(s.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, schema.SummarySentence{
			Text:      s.Text,
			Citations: canonicalCitations(s.Citations),
		})
	}
	return out
}

func canonicalCitations(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(in))
	uniq := make([]int, 0, len(in))
	for _, id := range in {
		if seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	sort.Ints(uniq)
	if len(uniq) > maxCitations {
		uniq = uniq[:maxCitations]
	}
	return uniq
}

var sentenceEnders = map[rune]bool{
	'。': true,
	'！': true,
	'？': true,
	'!': true,
	'?': true,
}

// splitSentences cuts after terminal punctuation, keeping the punctuation
// attached to the preceding fragment.
func splitSentences(text string) []string {
	var frags []string
	var cur []rune
	for _, r := range text {
		cur = append(cur, r)
		if sentenceEnders[r] {
			frags = append(frags, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		frags = append(frags, string(cur))
	}
	return frags
}

// Expand splits sentences the model merged into one entry. Every non-empty
// fragment inherits the full citation set of its original sentence, and the
// result is deduplicated again since fragments from different sentences can
// collide.
func Expand(in []schema.SummarySentence) []schema.SummarySentence {
	out := make([]schema.SummarySentence, 0, len(in))
	for _, s := range in {
		frags := splitSentences(s.Text)
		if len(frags) <= 1 {
			out = append(out, s)
			continue
		}
		for _, f := range frags {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			out = append(out, schema.SummarySentence{
				Text:      f,
				Citations: slices.Clone(s.Citations),
			})
		}
	}
	return Dedupe(out)
}
