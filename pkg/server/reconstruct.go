package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

const defaultReconstructLength = 300

type reconstructReq struct {
	Project      string `json:"project"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	TargetLength int    `json:"target_length,omitempty"`
}

type reconstructResp struct {
	Summary string      `json:"summary"`
	Window  string      `json:"window"`
	Mode    schema.Mode `json:"mode"`
}

// POST /api/reconstruct recomposes the window's per-chunk summaries, in
// order, into one summary of roughly the requested length.
func (s *Server) handlePostReconstruct(c echo.Context) error {
	var req reconstructReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/reconstruct", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.TargetLength <= 0 {
		req.TargetLength = defaultReconstructLength
	}
	p, ok := s.Projects[req.Project]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown project")
	}
	window := p.Window(req.Start, req.End)
	if len(window) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, errEmptyWindow.Error())
	}

	label := fmt.Sprintf("%d-%d", window[0].ID, window[len(window)-1].ID)
	summary, mode := s.reconstruct(c, window, req.TargetLength)
	return c.JSON(http.StatusOK, reconstructResp{Summary: summary, Window: label, Mode: mode})
}

func (s *Server) reconstruct(c echo.Context, window []schema.SourceChunk, targetLen int) (string, schema.Mode) {
	bodies := make([]string, 0, len(window))
	lines := make([]string, 0, len(window))
	for _, ch := range window {
		body := utils.CollapseWhitespace(ch.PriorSummary)
		if body == "" {
			body = utils.TruncateRunes(utils.CollapseWhitespace(ch.Text), 120)
		}
		if body == "" {
			continue
		}
		bodies = append(bodies, body)
		lines = append(lines, fmt.Sprintf("[%d] %s", ch.ID, body))
	}

	fallback := utils.TruncateRunes(strings.Join(bodies, " "), targetLen)
	if fallback == "" {
		fallback = "No readable source text was available for this window."
	}
	if s.Inferencer == nil {
		return fallback, schema.ModeFallback
	}

	user := fmt.Sprintf("Summary blocks (in order):\n%s\n----\nRecompose into one summary.", strings.Join(lines, "\n"))
	out, err := s.Inferencer.Infer(c.Request().Context(), nil, fmt.Sprintf(reconstructPrompt, targetLen), user)
	if err != nil {
		log.Warn("reconstruction inference failed", "error", err)
		return fallback, schema.ModeFallback
	}
	if out = strings.TrimSpace(out); out == "" {
		return fallback, schema.ModeFallback
	}
	return out, schema.ModeModel
}
