package project

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"

	"synopsis/pkg/inference"
	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

// Project is one loaded manuscript: its labeled chunks plus metadata. Chunks
// keep file order, which is also their narrative order. Handlers share one
// Project per manuscript across goroutines; all chunk access goes through
// the methods below, which synchronize on the embedded mutex.
type Project struct {
	Key    string
	Title  string
	Chunks []schema.SourceChunk

	mu   sync.RWMutex
	path string
}

// projectFile is the on-disk shape, kept free of synchronization state.
type projectFile struct {
	Key    string               `json:"key"`
	Title  string               `json:"title"`
	Chunks []schema.SourceChunk `json:"chunks"`
}

// Load reads a project from a JSON file.
func Load(path string) (*Project, error) {
	f, err := utils.Load[projectFile](path)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}
	if len(f.Chunks) == 0 {
		return nil, fmt.Errorf("project %s has no chunks", path)
	}
	return &Project{Key: f.Key, Title: f.Title, Chunks: f.Chunks, path: path}, nil
}

// Save writes the project back to the file it was loaded from.
func (p *Project) Save() error {
	if p.path == "" {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return utils.Save(p.path, projectFile{Key: p.Key, Title: p.Title, Chunks: p.Chunks})
}

// Len reports the chunk count.
func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.Chunks)
}

// Window returns a copy of the chunks at 1-based positions [start, end],
// clamped to the available range. An inverted or out-of-range request yields
// nil. Returning a snapshot keeps callers safe from concurrent summary
// backfills mutating the backing array.
func (p *Project) Window(start, end int) []schema.SourceChunk {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.Chunks) == 0 {
		return nil
	}
	start = max(1, start)
	end = min(len(p.Chunks), end)
	if start > end {
		return nil
	}
	out := make([]schema.SourceChunk, end-start+1)
	copy(out, p.Chunks[start-1:end])
	return out
}

const priorSummaryPrompt = `You are an editorial assistant. Summarize the given passage in one or two sentences of about %d characters, in the language of the passage. Keep the important proper nouns and events; do not invent anything.`

// EnsurePriorSummaries fills the PriorSummary of every chunk that lacks one
// and reports whether anything changed. With a nil inferencer, or when a
// model call fails, the summary is a plain truncation of the chunk text.
// The lock is not held across model calls; each chunk is re-checked before
// writing so a concurrent fill of the same chunk is not clobbered.
func (p *Project) EnsurePriorSummaries(ctx context.Context, inf inference.Inferencer, targetLen int) bool {
	if targetLen <= 0 {
		targetLen = 120
	}
	updated := false
	for i := 0; i < p.Len(); i++ {
		p.mu.RLock()
		text, existing := p.Chunks[i].Text, p.Chunks[i].PriorSummary
		p.mu.RUnlock()
		if strings.TrimSpace(existing) != "" {
			continue
		}

		summary := chunkSummary(ctx, inf, text, targetLen)
		if summary == "" {
			continue
		}

		p.mu.Lock()
		if strings.TrimSpace(p.Chunks[i].PriorSummary) == "" {
			p.Chunks[i].PriorSummary = summary
			updated = true
		}
		p.mu.Unlock()
	}
	return updated
}

func chunkSummary(ctx context.Context, inf inference.Inferencer, text string, targetLen int) string {
	fallback := utils.TruncateRunes(strings.TrimSpace(text), targetLen)
	if fallback == "" {
		return ""
	}
	if inf == nil {
		return fallback
	}

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(int64(targetLen * 4)),
	}
	out, err := inf.Infer(ctx, params, fmt.Sprintf(priorSummaryPrompt, targetLen), text)
	if err != nil {
		return fallback
	}
	if out = strings.TrimSpace(out); out != "" {
		return out
	}
	return fallback
}

// ChunkMentions returns copies of up to limit chunks whose text or prior
// summary mentions name. A limit of 0 or less means no limit.
func (p *Project) ChunkMentions(name string, limit int) []schema.SourceChunk {
	target := strings.TrimSpace(name)
	if target == "" {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var hits []schema.SourceChunk
	for _, ch := range p.Chunks {
		if strings.Contains(ch.Text, target) || strings.Contains(ch.PriorSummary, target) {
			hits = append(hits, ch)
			if limit > 0 && len(hits) >= limit {
				break
			}
		}
	}
	return hits
}
