package synthesis

import (
	"fmt"
	"strings"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

// BuildContext projects a chunk window into the textual context handed to
// the model: one "[id] body" line per chunk, joined by blank lines. The body
// is the chunk's prior summary when one exists, otherwise its full text,
// whitespace-collapsed and truncated to chunkCap runes with an ellipsis
// marker. A positive totalCap hard-cuts the joined string with no
// word-boundary awareness; this lossiness is accepted.
//
// An empty window yields an empty string, which callers must treat as
// "cannot synthesize".
func BuildContext(window []schema.SourceChunk, chunkCap, totalCap int) string {
	if len(window) == 0 {
		return ""
	}

	lines := make([]string, 0, len(window))
	for _, ch := range window {
		body := ch.PriorSummary
		if strings.TrimSpace(body) == "" {
			body = ch.Text
		}
		body = utils.CollapseWhitespace(body)
		body = utils.TruncateRunes(body, chunkCap)
		lines = append(lines, fmt.Sprintf("[%d] %s", ch.ID, body))
	}

	joined := strings.Join(lines, "\n\n")
	if totalCap > 0 {
		joined = utils.HardCutRunes(joined, totalCap)
	}
	return joined
}
