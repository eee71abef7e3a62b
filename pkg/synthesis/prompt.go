package synthesis

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an editorial assistant for long-form narrative manuscripts. You read numbered source chunks and produce a concise, faithful summary in the language of the source text.

Output a JSON array only: no commentary, no markdown fences. Each element is one summary sentence of the form
{"text": "<one sentence>", "citations": [<chunk id>]}
where the citations are the bracketed numbers of the chunks that ground the sentence (one or two ids per sentence). Do not invent ids, do not invent events, and keep the sentences in narrative order.`

// minCoverageSegments is the chunk count at which the coverage directive
// switches from a generic instruction to three labeled id-range segments.
const minCoverageSegments = 20

// SentenceBounds returns the sentence-count range requested from the model
// for a given summary grain (target character count, clamped to 50..800)
// and window size.
func SentenceBounds(grain, chunkCount int) (low, high int) {
	g := min(max(grain, 50), 800)
	large := chunkCount >= 50
	switch {
	case g <= 200:
		if large {
			return 4, 7
		}
		return 3, 6
	case g <= 500:
		if large {
			return 6, 10
		}
		return 4, 8
	default:
		if large {
			return 11, 18
		}
		return 8, 14
	}
}

// CoverageInstruction tells the model how to spread citations over the
// window. Small windows get a generic directive; larger ones are partitioned
// into three contiguous, near-equal id-range segments the model must each
// cite at least once. ids must be in window order.
func CoverageInstruction(ids []int) string {
	if len(ids) < minCoverageSegments {
		return "Cover the whole excerpt; do not concentrate every citation on a single chunk."
	}
	b1 := len(ids) / 3
	b2 := 2 * len(ids) / 3
	return fmt.Sprintf(
		"Spread your citations across the whole window: cite the early segment (ids %d-%d), the middle segment (ids %d-%d), and the late segment (ids %d-%d) with at least one sentence each.",
		ids[0], ids[b1-1], ids[b1], ids[b2-1], ids[b2], ids[len(ids)-1],
	)
}

// AssemblePrompt builds the model instructions for one synthesis call. It is
// a pure function of the window's ordered ids, the grain, and a label naming
// the window; it does not call the model.
func AssemblePrompt(ids []int, grain int, windowLabel string) string {
	low, high := SentenceBounds(grain, len(ids))
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Write between %d and %d sentences, about %d characters in total.\n", low, high, grain)
	b.WriteString(CoverageInstruction(ids))
	fmt.Fprintf(&b, "\nWindow: chunks %s (%d chunks).", windowLabel, len(ids))
	return b.String()
}
