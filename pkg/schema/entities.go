package schema

// Mode reports which path produced a synthesis result.
type Mode string

const (
	// ModeModel marks a result parsed out of a live model response.
	ModeModel Mode = "model"
	// ModeFallback marks a result produced by the deterministic fallback path.
	ModeFallback Mode = "fallback"
)

// SourceChunk is one unit of labeled narrative text. IDs are assigned by the
// caller, unique within a window, and not necessarily contiguous. A chunk may
// carry a previously generated summary which is preferred over the full text
// when building model context.
type SourceChunk struct {
	ID           int    `json:"id"`
	Text         string `json:"text"`
	PriorSummary string `json:"summary,omitempty"`
}

// SummarySentence is one synthesized sentence together with the chunk ids
// that ground it. Citations are unique, ascending, and capped at two.
type SummarySentence struct {
	Text      string `json:"text"`
	Citations []int  `json:"citations"`
}

// SynthesisResult is the complete outcome of one synthesis call. Sentences
// keep their narrative order, JoinedSummary is their texts space-joined, and
// AllCitations is the sorted set of chunk ids cited anywhere in the result.
type SynthesisResult struct {
	Sentences     []SummarySentence `json:"sentences"`
	JoinedSummary string            `json:"joined_summary"`
	AllCitations  []int             `json:"all_citations"`
	Mode          Mode              `json:"mode"`
}

// CharacterNote is the structured editorial note extracted for a single
// character from the chunks that mention them.
type CharacterNote struct {
	Overview      string `json:"overview" jsonschema_description:"Two or three sentence overview of the character"`
	Personality   string `json:"personality" jsonschema_description:"Personality and values as grounded in the provided excerpts"`
	Strengths     string `json:"strengths" jsonschema_description:"Skills, strengths and weaknesses mentioned or clearly implied"`
	Relationships string `json:"relationships" jsonschema_description:"Relationships to other characters inferable from the excerpts; do not over-speculate"`
}
