package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

type summariesReq struct {
	Project      string `json:"project"`
	TargetLength int    `json:"target_length,omitempty"`
}

type summariesResp struct {
	Project string `json:"project"`
	Chunks  int    `json:"chunks"`
	Updated bool   `json:"updated"`
}

// POST /api/summaries backfills per-chunk summaries so the context
// builder has something shorter than the raw text to work with.
func (s *Server) handlePostSummaries(c echo.Context) error {
	var req summariesReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/summaries", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	p, ok := s.Projects[req.Project]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown project")
	}

	updated := p.EnsurePriorSummaries(c.Request().Context(), s.Inferencer, req.TargetLength)
	if updated {
		if err := p.Save(); err != nil {
			log.Error("failed to persist project after summary backfill", "project", req.Project, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not save project")
		}
	}
	return c.JSON(http.StatusOK, summariesResp{Project: req.Project, Chunks: p.Len(), Updated: updated})
}
