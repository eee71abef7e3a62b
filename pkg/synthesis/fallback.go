package synthesis

import (
	"strings"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

const (
	// fallbackChunkLimit is how many leading chunks the model-free path reads.
	fallbackChunkLimit = 4
	// fallbackSentenceCap is the rune cap applied to each fallback sentence.
	fallbackSentenceCap = 160
)

// Fallback produces a small deterministic summary directly from the leading
// chunks of the window, used whenever the model path fails to deliver a
// usable result. Each surviving chunk becomes one sentence citing exactly its
// own id. Fallback never fails: a window with no readable text yields a
// single sentinel sentence with no citations.
func Fallback(window []schema.SourceChunk) schema.SynthesisResult {
	head := window
	if len(head) > fallbackChunkLimit {
		head = head[:fallbackChunkLimit]
	}

	seen := make(map[string]bool, len(head))
	sentences := make([]schema.SummarySentence, 0, len(head))
	for _, ch := range head {
		body := ch.Text
		if strings.TrimSpace(body) == "" {
			body = ch.PriorSummary
		}
		body = utils.CollapseWhitespace(body)
		if body == "" || seen[body] {
			continue
		}
		seen[body] = true
		sentences = append(sentences, schema.SummarySentence{
			Text:      utils.TruncateRunes(body, fallbackSentenceCap),
			Citations: []int{ch.ID},
		})
	}

	if len(sentences) == 0 {
		sentences = []schema.SummarySentence{{
			Text: "No readable source text was available for this window.",
		}}
	}
	return finish(sentences, schema.ModeFallback)
}
