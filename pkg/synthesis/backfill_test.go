package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synopsis/pkg/schema"
)

func TestBackfillBorrowsFromPrecedingSentence(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "a", Citations: []int{2, 5}},
		{Text: "b"},
	}
	got := Backfill(in, allowed(1, 2, 3, 4, 5))
	require.Len(t, got, 2)
	assert.Equal(t, []int{2, 5}, got[0].Citations)
	assert.Equal(t, []int{5}, got[1].Citations, "borrows the highest id of the previous cited sentence")
}

func TestBackfillBorrowsFromUpcomingSentence(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "a"},
		{Text: "b", Citations: []int{3}},
	}
	got := Backfill(in, allowed(1, 2, 3))
	assert.Equal(t, []int{3}, got[0].Citations)
	assert.Equal(t, []int{3}, got[1].Citations)
}

func TestBackfillInterpolatesWhenNothingIsCited(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "a"}, {Text: "b"}, {Text: "c"},
	}
	got := Backfill(in, allowed(10, 20, 30, 40, 50))
	require.Len(t, got, 3)
	assert.Equal(t, []int{10}, got[0].Citations)
	assert.Equal(t, []int{30}, got[1].Citations)
	assert.Equal(t, []int{50}, got[2].Citations)
}

func TestBackfillDropsInvalidAndSorts(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "a", Citations: []int{9, 99, 4}},
	}
	got := Backfill(in, allowed(4, 9))
	assert.Equal(t, []int{4, 9}, got[0].Citations)
}

func TestBackfillSingleUncitedSentence(t *testing.T) {
	got := Backfill([]schema.SummarySentence{{Text: "a"}}, allowed(7))
	assert.Equal(t, []int{7}, got[0].Citations)
}

func TestBackfillEverySentenceEndsUpCited(t *testing.T) {
	in := []schema.SummarySentence{
		{Text: "a"},
		{Text: "b", Citations: []int{99}}, // invalid only
		{Text: "c", Citations: []int{2}},
		{Text: "d"},
	}
	ids := allowed(1, 2, 3)
	for _, s := range Backfill(in, ids) {
		require.NotEmpty(t, s.Citations, s.Text)
		for _, id := range s.Citations {
			assert.True(t, ids[id], "citation %d outside window", id)
		}
	}
}
