package project

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

type stubInferencer struct {
	out string
	err error
}

func (s *stubInferencer) Infer(context.Context, *openai.ChatCompletionNewParams, string, string) (string, error) {
	return s.out, s.err
}

func writeProject(t *testing.T, key, title string, chunks []schema.SourceChunk) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, utils.Save(path, projectFile{Key: key, Title: title, Chunks: chunks}))
	return path
}

func fiveChunks() []schema.SourceChunk {
	return []schema.SourceChunk{
		{ID: 1, Text: "one"},
		{ID: 2, Text: "two"},
		{ID: 3, Text: "three"},
		{ID: 4, Text: "four"},
		{ID: 5, Text: "five"},
	}
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	path := writeProject(t, "demo", "Demo", fiveChunks())

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Key)
	require.Len(t, p.Chunks, 5)

	p.Chunks[0].PriorSummary = "changed"
	require.NoError(t, p.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", again.Chunks[0].PriorSummary)
}

func TestLoadRejectsEmptyProject(t *testing.T) {
	path := writeProject(t, "empty", "", nil)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestWindowReturnsSnapshot(t *testing.T) {
	p := &Project{Chunks: fiveChunks()}
	w := p.Window(1, 2)
	require.Len(t, w, 2)

	updated := p.EnsurePriorSummaries(context.Background(), nil, 120)
	require.True(t, updated)
	assert.Empty(t, w[0].PriorSummary, "earlier windows are unaffected by later backfills")
	assert.NotEmpty(t, p.Window(1, 1)[0].PriorSummary)
}

func TestConcurrentWindowAndSummaryBackfill(t *testing.T) {
	p := &Project{Chunks: fiveChunks()}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				for _, ch := range p.Window(1, 5) {
					_ = ch.PriorSummary
					_ = ch.Text
				}
				p.ChunkMentions("one", 2)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			p.EnsurePriorSummaries(context.Background(), nil, 120)
			for i := range p.Chunks {
				p.mu.Lock()
				p.Chunks[i].PriorSummary = ""
				p.mu.Unlock()
			}
		}
	}()
	wg.Wait()

	p.EnsurePriorSummaries(context.Background(), nil, 120)
	for _, ch := range p.Window(1, 5) {
		assert.NotEmpty(t, ch.PriorSummary)
	}
}

func TestWindow(t *testing.T) {
	p := &Project{Chunks: fiveChunks()}
	tests := []struct {
		name       string
		start, end int
		wantIDs    []int
	}{
		{"full range", 1, 5, []int{1, 2, 3, 4, 5}},
		{"middle slice", 2, 4, []int{2, 3, 4}},
		{"single chunk", 3, 3, []int{3}},
		{"clamped low", -2, 2, []int{1, 2}},
		{"clamped high", 4, 99, []int{4, 5}},
		{"inverted", 4, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Window(tt.start, tt.end)
			var ids []int
			for _, ch := range got {
				ids = append(ids, ch.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEnsurePriorSummariesWithModel(t *testing.T) {
	p := &Project{Chunks: []schema.SourceChunk{
		{ID: 1, Text: "long passage one"},
		{ID: 2, Text: "long passage two", PriorSummary: "already there"},
	}}
	updated := p.EnsurePriorSummaries(context.Background(), &stubInferencer{out: "model summary"}, 120)
	assert.True(t, updated)
	assert.Equal(t, "model summary", p.Chunks[0].PriorSummary)
	assert.Equal(t, "already there", p.Chunks[1].PriorSummary, "existing summaries are kept")
}

func TestEnsurePriorSummariesFallsBackToTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	p := &Project{Chunks: []schema.SourceChunk{{ID: 1, Text: long}}}

	updated := p.EnsurePriorSummaries(context.Background(), &stubInferencer{err: errors.New("down")}, 40)
	assert.True(t, updated)
	got := p.Chunks[0].PriorSummary
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 41)
}

func TestEnsurePriorSummariesNilInferencer(t *testing.T) {
	p := &Project{Chunks: []schema.SourceChunk{{ID: 1, Text: "short text"}}}
	updated := p.EnsurePriorSummaries(context.Background(), nil, 120)
	assert.True(t, updated)
	assert.Equal(t, "short text", p.Chunks[0].PriorSummary)
}

func TestEnsurePriorSummariesNoopWhenComplete(t *testing.T) {
	p := &Project{Chunks: []schema.SourceChunk{{ID: 1, Text: "t", PriorSummary: "s"}}}
	assert.False(t, p.EnsurePriorSummaries(context.Background(), nil, 120))
}

func TestChunkMentions(t *testing.T) {
	p := &Project{Chunks: []schema.SourceChunk{
		{ID: 1, Text: "Mara packs."},
		{ID: 2, Text: "The ferryman waits."},
		{ID: 3, Text: "", PriorSummary: "Mara crosses."},
		{ID: 4, Text: "Mara again."},
	}}

	hits := p.ChunkMentions("Mara", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].ID)
	assert.Equal(t, 3, hits[1].ID, "prior summaries are searched too")

	assert.Len(t, p.ChunkMentions("Mara", 0), 3, "zero limit means unlimited")
	assert.Empty(t, p.ChunkMentions("  ", 5))
	assert.Empty(t, p.ChunkMentions("Nobody", 5))
}
