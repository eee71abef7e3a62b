package synthesis

import (
	"math"
	"sort"

	"synopsis/pkg/schema"
)

// Backfill guarantees that every sentence leaves with at least one citation
// from the allowed id set. Sentences are processed in order; an uncited
// sentence borrows, in order of preference:
//
//  1. the highest citation of the most recent already-processed cited
//     sentence (narrative locality),
//  2. the first valid citation of the next upcoming cited sentence,
//  3. a proportional interpolation over the window's sorted ids when the
//     whole list carries no citation at all.
func Backfill(in []schema.SummarySentence, allowed map[int]bool) []schema.SummarySentence {
	ids := sortedIDs(allowed)
	result := make([]schema.SummarySentence, 0, len(in))
	for i, s := range in {
		cites := validCitations(s.Citations, allowed)
		if len(cites) > 0 {
			sort.Ints(cites)
			result = append(result, schema.SummarySentence{Text: s.Text, Citations: cites})
			continue
		}
		if id, ok := lastAssigned(result); ok {
			result = append(result, schema.SummarySentence{Text: s.Text, Citations: []int{id}})
			continue
		}
		if id, ok := nextCited(in[i+1:], allowed); ok {
			result = append(result, schema.SummarySentence{Text: s.Text, Citations: []int{id}})
			continue
		}
		if len(ids) > 0 {
			result = append(result, schema.SummarySentence{Text: s.Text, Citations: []int{interpolate(ids, i, len(in))}})
			continue
		}
		result = append(result, schema.SummarySentence{Text: s.Text})
	}
	return result
}

func validCitations(in []int, allowed map[int]bool) []int {
	out := make([]int, 0, len(in))
	for _, id := range in {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

// lastAssigned finds the most recent processed sentence with citations and
// returns its last (highest) id.
func lastAssigned(result []schema.SummarySentence) (int, bool) {
	for i := len(result) - 1; i >= 0; i-- {
		if n := len(result[i].Citations); n > 0 {
			return result[i].Citations[n-1], true
		}
	}
	return 0, false
}

// nextCited finds the next unprocessed sentence with a valid citation and
// returns its first valid id.
func nextCited(rest []schema.SummarySentence, allowed map[int]bool) (int, bool) {
	for _, s := range rest {
		for _, id := range s.Citations {
			if allowed[id] {
				return id, true
			}
		}
	}
	return 0, false
}

// interpolate maps a sentence's position ratio onto the sorted id list.
func interpolate(ids []int, index, total int) int {
	if total <= 1 || len(ids) == 1 {
		return ids[0]
	}
	ratio := float64(index) / float64(total-1)
	rank := int(math.Round(ratio * float64(len(ids)-1)))
	return ids[rank]
}

func sortedIDs(allowed map[int]bool) []int {
	ids := make([]int, 0, len(allowed))
	for id := range allowed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
