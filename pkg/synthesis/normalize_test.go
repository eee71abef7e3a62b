package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synopsis/pkg/schema"
)

func allowed(ids ...int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestNormalizeCoercions(t *testing.T) {
	tests := []struct {
		name string
		in   Candidate
		want []schema.SummarySentence
	}{
		{
			name: "plain sentence",
			in:   Candidate{Text: " A thing happens. ", Citations: []any{float64(1)}},
			want: []schema.SummarySentence{{Text: "A thing happens.", Citations: []int{1}}},
		},
		{
			name: "scalar citation wrapped into a list",
			in:   Candidate{Text: "a", Citations: float64(2)},
			want: []schema.SummarySentence{{Text: "a", Citations: []int{2}}},
		},
		{
			name: "string citations parsed",
			in:   Candidate{Text: "a", Citations: []any{" 3 ", "x"}},
			want: []schema.SummarySentence{{Text: "a", Citations: []int{3}}},
		},
		{
			name: "out-of-window ids filtered",
			in:   Candidate{Text: "a", Citations: []any{float64(99), float64(1)}},
			want: []schema.SummarySentence{{Text: "a", Citations: []int{1}}},
		},
		{
			name: "citations capped at two",
			in:   Candidate{Text: "a", Citations: []any{float64(3), float64(1), float64(2)}},
			want: []schema.SummarySentence{{Text: "a", Citations: []int{3, 1}}},
		},
		{
			name: "numeric text kept",
			in:   Candidate{Text: float64(7), Citations: nil},
			want: []schema.SummarySentence{{Text: "7", Citations: nil}},
		},
		{
			name: "empty text dropped",
			in:   Candidate{Text: "   ", Citations: []any{float64(1)}},
			want: []schema.SummarySentence{},
		},
		{
			name: "object text dropped",
			in:   Candidate{Text: map[string]any{"en": "hi"}, Citations: []any{float64(1)}},
			want: []schema.SummarySentence{},
		},
		{
			name: "fractional citation dropped",
			in:   Candidate{Text: "a", Citations: []any{1.5}},
			want: []schema.SummarySentence{{Text: "a", Citations: nil}},
		},
		{
			name: "all citations filtered yields nil, not empty slice",
			in:   Candidate{Text: "a", Citations: []any{float64(99), "x"}},
			want: []schema.SummarySentence{{Text: "a", Citations: nil}},
		},
	}
	window := allowed(1, 2, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]Candidate{tt.in}, window)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupe(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "Mara  leaves.", Citations: []int{2, 1, 2}},
		{Text: "Mara leaves.", Citations: []int{3}},
		{Text: "She returns.", Citations: nil},
	}
	got := Dedupe(in)
	require.Len(t, got, 2)
	assert.Equal(t, "Mara  leaves.", got[0].Text)
	assert.Equal(t, []int{1, 2}, got[0].Citations, "citations deduplicated and sorted")
	assert.Equal(t, "She returns.", got[1].Text)

	assert.Equal(t, got, Dedupe(got), "dedupe is idempotent")
}

func TestExpandSplitsMergedSentences(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "A。B。", Citations: []int{3, 5}},
	}
	got := Expand(in)
	require.Len(t, got, 2)
	assert.Equal(t, "A。", got[0].Text)
	assert.Equal(t, []int{3, 5}, got[0].Citations)
	assert.Equal(t, "B。", got[1].Text)
	assert.Equal(t, []int{3, 5}, got[1].Citations)

	// The fragments must not share a backing array.
	got[0].Citations[0] = 99
	assert.Equal(t, []int{3, 5}, got[1].Citations)
}

func TestExpandLeavesSingleSentencesAlone(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "No terminal punctuation here", Citations: []int{1}},
		{Text: "One sentence only!", Citations: []int{2}},
	}
	got := Expand(in)
	require.Len(t, got, 2)
	assert.Equal(t, in[0].Text, got[0].Text)
	assert.Equal(t, in[1].Text, got[1].Text)
}

func TestExpandDedupesCollidingFragments(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "A! B!", Citations: []int{1}},
		{Text: "B! C!", Citations: []int{2}},
	}
	got := Expand(in)
	require.Len(t, got, 3)
	assert.Equal(t, "A!", got[0].Text)
	assert.Equal(t, "B!", got[1].Text)
	assert.Equal(t, []int{1}, got[1].Citations, "first occurrence wins")
	assert.Equal(t, "C!", got[2].Text)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A。B！C？", []string{"A。", "B！", "C？"}},
		{"Hello? Yes. Trailing", []string{"Hello?", " Yes. Trailing"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitSentences(tt.in), tt.in)
	}
}
