package synthesis

import (
	"encoding/json"
	"errors"
	"strings"
)

// Candidate is one raw element recovered from model output, not yet
// validated. Text and Citations carry whatever JSON values the model emitted.
type Candidate struct {
	Text      any
	Citations any
}

var (
	errNoArray    = errors.New("no JSON array found in model output")
	errUnparsable = errors.New("model output could not be parsed by any strategy")
)

// ParseCandidates extracts a JSON array of candidate sentences from raw
// model output. Strategies are tried strictly in order of permissiveness:
// strict parse of the extracted span, strict parse after textual repair, and
// finally per-object salvage of the valid prefix. The ordering matters: a
// well-formed response must never reach the lossy salvage stage.
func ParseCandidates(raw string) ([]Candidate, error) {
	objects, err := ParseObjects(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(objects))
	for _, obj := range objects {
		out = append(out, Candidate{Text: obj["text"], Citations: obj["citations"]})
	}
	return out, nil
}

// ParseObjects is the shape-agnostic core of the resilient parser: it
// returns every object of the first JSON array found in raw. Array elements
// that are not objects are dropped silently.
func ParseObjects(raw string) ([]map[string]any, error) {
	span, err := extractArray(raw)
	if err != nil {
		return nil, err
	}
	if objs, ok := parseArray(span); ok {
		return objs, nil
	}
	repaired := applyRepairs(span)
	if objs, ok := parseArray(repaired); ok {
		return objs, nil
	}
	if objs := salvageObjects(repaired); len(objs) > 0 {
		return objs, nil
	}
	return nil, errUnparsable
}

// extractArray strips markdown fences and slices the text between the first
// '[' and the last ']'.
func extractArray(raw string) (string, error) {
	txt := stripFences(raw)
	start := strings.IndexByte(txt, '[')
	end := strings.LastIndexByte(txt, ']')
	if start < 0 || end < 0 || end <= start {
		return "", errNoArray
	}
	return txt[start : end+1], nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func parseArray(span string) ([]map[string]any, bool) {
	var arr []any
	if err := json.Unmarshal([]byte(span), &arr); err != nil {
		return nil, false
	}
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, true
}

type scanState int

const (
	scanNormal scanState = iota
	scanInString
	scanEscaped
)

// salvageObjects walks the text tracking quote state and brace depth; every
// time a top-level object closes it is parsed in isolation, and failures are
// skipped. This recovers the valid prefix of an array whose tail was
// truncated or mangled.
func salvageObjects(s string) []map[string]any {
	var out []map[string]any
	state := scanNormal
	depth := 0
	start := -1
	for i, r := range s {
		switch state {
		case scanEscaped:
			state = scanInString
		case scanInString:
			switch r {
			case '\\':
				state = scanEscaped
			case '"':
				state = scanNormal
			}
		default:
			switch r {
			case '"':
				state = scanInString
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 && start >= 0 {
					var obj map[string]any
					if err := json.Unmarshal([]byte(s[start:i+1]), &obj); err == nil {
						out = append(out, obj)
					}
					start = -1
				}
			}
		}
	}
	return out
}
