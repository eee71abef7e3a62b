package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"synopsis/pkg/inference"
	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

const (
	defaultChunkCap = 400
	// completionFloor keeps short-grain requests from starving the model of
	// output room for the JSON envelope around the sentences.
	completionFloor = 512
)

// Config carries the engine's context-shaping knobs.
type Config struct {
	// ChunkCap is the per-chunk rune cap inside the prompt context.
	ChunkCap int
	// ContextCap limits the total context runes; 0 means unlimited.
	ContextCap int
	// Model optionally overrides the inferencer's default model.
	Model string
}

// Engine turns a window of source chunks into a cited summary. It is
// stateless between calls: concurrent invocations are independent.
type Engine struct {
	inf inference.Inferencer
	cfg Config
}

// New builds an engine around an injected inferencer. A nil inferencer is
// valid and routes every call to the deterministic fallback path.
func New(inf inference.Inferencer, cfg Config) *Engine {
	if cfg.ChunkCap <= 0 {
		cfg.ChunkCap = defaultChunkCap
	}
	return &Engine{inf: inf, cfg: cfg}
}

// Synthesize produces a cited summary of the window at the requested grain
// (target character count). It never returns an error: a missing client, a
// failed or empty model call, unparsable output, and an empty normalized
// result all degrade to the fallback synthesizer, flagged by the result's
// Mode.
func (e *Engine) Synthesize(ctx context.Context, window []schema.SourceChunk, grain int) schema.SynthesisResult {
	contextText := BuildContext(window, e.cfg.ChunkCap, e.cfg.ContextCap)
	if contextText == "" {
		log.Warn("empty synthesis context", "chunks", len(window))
		return Fallback(window)
	}
	if e.inf == nil {
		log.Debug("no model client configured, using fallback synthesis", "chunks", len(window))
		return Fallback(window)
	}

	allowed := allowedIDs(window)
	system := AssemblePrompt(windowIDs(window), grain, windowLabel(window))
	user := "Source chunks:\n\n" + contextText + "\n----\nReturn the JSON array only."

	params := &openai.ChatCompletionNewParams{
		Model:               e.cfg.Model,
		MaxCompletionTokens: openai.Int(int64(max(grain*4, completionFloor))),
	}
	if tokens, err := utils.NumTokens(system + user); err == nil {
		log.Debug("synthesizing window", "chunks", len(window), "grain", grain, "chars", len(system)+len(user), "tokens", tokens)
	} else {
		log.Debug("synthesizing window", "chunks", len(window), "grain", grain, "chars", len(system)+len(user))
	}

	out, err := e.inf.Infer(ctx, params, system, user)
	if err != nil {
		log.Warn("synthesis inference failed, using fallback", "error", err)
		return Fallback(window)
	}
	if strings.TrimSpace(out) == "" {
		log.Warn("synthesis returned empty output, using fallback")
		return Fallback(window)
	}

	candidates, err := ParseCandidates(out)
	if err != nil {
		log.Warn("synthesis output unparsable, using fallback", "error", err)
		log.Debug("raw model output", "output", out)
		return Fallback(window)
	}

	sentences := Normalize(candidates, allowed)
	sentences = Dedupe(sentences)
	sentences = Expand(sentences)
	if len(sentences) == 0 {
		log.Warn("no sentences survived normalization, using fallback", "candidates", len(candidates))
		return Fallback(window)
	}
	sentences = Backfill(sentences, allowed)

	return finish(sentences, schema.ModeModel)
}

func finish(sentences []schema.SummarySentence, mode schema.Mode) schema.SynthesisResult {
	texts := make([]string, len(sentences))
	seen := make(map[int]bool)
	var all []int
	for i, s := range sentences {
		texts[i] = s.Text
		for _, id := range s.Citations {
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
			}
		}
	}
	sort.Ints(all)
	return schema.SynthesisResult{
		Sentences:     sentences,
		JoinedSummary: strings.Join(texts, " "),
		AllCitations:  all,
		Mode:          mode,
	}
}

func allowedIDs(window []schema.SourceChunk) map[int]bool {
	allowed := make(map[int]bool, len(window))
	for _, ch := range window {
		allowed[ch.ID] = true
	}
	return allowed
}

func windowIDs(window []schema.SourceChunk) []int {
	ids := make([]int, len(window))
	for i, ch := range window {
		ids[i] = ch.ID
	}
	return ids
}

func windowLabel(window []schema.SourceChunk) string {
	if len(window) == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d", window[0].ID, window[len(window)-1].ID)
}
