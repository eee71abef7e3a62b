package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"synopsis/pkg/schema"
	"synopsis/pkg/synthesis"
	"synopsis/pkg/utils"
)

const (
	plotChunkCap     = 400
	plotSpeakerCap   = 10
	plotSceneLimit   = 4
	plotSceneLineCap = 160
)

type plotReq struct {
	Project    string   `json:"project"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Characters []string `json:"characters,omitempty"`
}

type plotResp struct {
	Script string      `json:"script"`
	Window string      `json:"window"`
	Mode   schema.Mode `json:"mode"`
}

// POST /api/plot
func (s *Server) handlePostPlot(c echo.Context) error {
	var req plotReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/plot", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
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
	script, mode := s.plotScript(c, p.Title, window, label, req.Characters)
	return c.JSON(http.StatusOK, plotResp{Script: script, Window: label, Mode: mode})
}

func (s *Server) plotScript(c echo.Context, title string, window []schema.SourceChunk, label string, characters []string) (string, schema.Mode) {
	if s.Inferencer == nil {
		return samplePlotScript(window, label), schema.ModeFallback
	}

	speakers := strings.Join(characters[:min(len(characters), plotSpeakerCap)], ", ")
	if speakers == "" {
		speakers = "(unspecified)"
	}
	user := fmt.Sprintf("Work: %s\nChunk range: %s\nAvailable characters: %s\nSource chunks:\n\n%s\n----\nReturn the draft script only.",
		title, label, speakers, synthesis.BuildContext(window, plotChunkCap, 0))

	out, err := s.Inferencer.Infer(c.Request().Context(), nil, plotPrompt, user)
	if err != nil {
		log.Warn("plot inference failed, using sample script", "window", label, "error", err)
		return samplePlotScript(window, label), schema.ModeFallback
	}
	if out = strings.TrimSpace(out); out == "" {
		log.Warn("plot inference returned empty output, using sample script", "window", label)
		return samplePlotScript(window, label), schema.ModeFallback
	}
	return out, schema.ModeModel
}

// samplePlotScript builds a deterministic scene skeleton from the leading
// chunks so the editor always gets a draft to mark up.
func samplePlotScript(window []schema.SourceChunk, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sample script for chunks %s\n", label)
	scenes := 0
	for _, ch := range window {
		if scenes == plotSceneLimit {
			break
		}
		body := utils.CollapseWhitespace(ch.Text)
		if body == "" {
			body = utils.CollapseWhitespace(ch.PriorSummary)
		}
		if body == "" {
			continue
		}
		scenes++
		fmt.Fprintf(&b, "\nScene %d (chunk %d)\n", scenes, ch.ID)
		fmt.Fprintf(&b, "Narration: %q\n", utils.TruncateRunes(body, plotSceneLineCap))
	}
	if scenes == 0 {
		b.WriteString("\nNo readable source text was available for this window.\n")
	}
	return b.String()
}
