package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"synopsis/pkg/diff"
	"synopsis/pkg/synthesis"
)

const (
	defaultVariationCount = 3
	maxVariationCount     = 5
)

type variationsReq struct {
	Summary string `json:"summary"`
	Purpose string `json:"purpose,omitempty"`
	Count   int    `json:"count,omitempty"`
}

type variation struct {
	Text   string           `json:"text"`
	Note   string           `json:"note,omitempty"`
	Deltas []diff.WordDelta `json:"deltas,omitempty"`
}

// rewrite is one model-produced draft before diffing.
type rewrite struct {
	text string
	note string
}

type variationsResp struct {
	Variations []variation `json:"variations"`
}

// POST /api/variations
func (s *Server) handlePostVariations(c echo.Context) error {
	var req variationsReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/variations", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Summary = strings.TrimSpace(req.Summary)
	if req.Summary == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "summary is required")
	}
	if req.Count <= 0 {
		req.Count = defaultVariationCount
	}
	req.Count = min(req.Count, maxVariationCount)
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		purpose = "make it easier to read"
	}

	drafts := s.variationDrafts(c, req, purpose)
	out := make([]variation, 0, len(drafts))
	for _, d := range drafts {
		v := variation{Text: d.text, Note: d.note}
		if d.text != req.Summary {
			v.Deltas = diff.Words(req.Summary, d.text)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, variationsResp{Variations: out})
}

// variationDrafts asks the model for rewrites; any failure falls back to the
// original summary as the only variant.
func (s *Server) variationDrafts(c echo.Context, req variationsReq, purpose string) []rewrite {
	fallback := []rewrite{{text: req.Summary}}
	if s.Inferencer == nil {
		return fallback
	}

	user := fmt.Sprintf("Summary:\n%s\n\nPurpose:\n%s\n----\nReturn %d rewrites as a JSON array.", req.Summary, purpose, req.Count)
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(int64(len(req.Summary)*req.Count + 512)),
	}
	out, err := s.Inferencer.Infer(c.Request().Context(), params, variationsPrompt, user)
	if err != nil {
		log.Warn("variation inference failed", "error", err)
		return fallback
	}

	objects, err := synthesis.ParseObjects(out)
	if err != nil {
		log.Warn("variation output unparsable", "error", err)
		return fallback
	}
	var drafts []rewrite
	for _, obj := range objects {
		v, _ := obj["variant"].(string)
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		n, _ := obj["note"].(string)
		drafts = append(drafts, rewrite{text: v, note: strings.TrimSpace(n)})
		if len(drafts) == req.Count {
			break
		}
	}
	if len(drafts) == 0 {
		return fallback
	}
	return drafts
}
