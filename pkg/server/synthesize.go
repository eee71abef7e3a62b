package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"
)

type synthesizeReq struct {
	Project string `json:"project"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Grain   int    `json:"grain"`
}

// POST /api/synthesize
func (s *Server) handlePostSynthesize(c echo.Context) error {
	var req synthesizeReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/synthesize", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if _, ok := s.Projects[req.Project]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown project")
	}
	if req.Grain <= 0 {
		req.Grain = 300
	}

	key := resultKey{Project: req.Project, Start: req.Start, End: req.End, Grain: req.Grain}
	if c.Request().Header.Get("Cache-Control") == "no-cache" {
		s.results.Forget(key)
	}

	run := ksuid.New().String()
	log.Info("synthesis requested", "run", run, "project", req.Project, "start", req.Start, "end", req.End, "grain", req.Grain)

	result, err := s.results.Get(key)
	if err != nil {
		log.Warn("synthesis rejected", "run", run, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	log.Info("synthesis complete", "run", run, "mode", result.Mode, "sentences", len(result.Sentences), "citations", len(result.AllCitations))
	return c.JSON(http.StatusOK, result)
}
