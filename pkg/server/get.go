package server

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "synopsis",
		"status":  "ok",
	})
}

type projectInfo struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

func (s *Server) handleGetProjects(c echo.Context) error {
	infos := make([]projectInfo, 0, len(s.Projects))
	for key, p := range s.Projects {
		infos = append(infos, projectInfo{Key: key, Title: p.Title, Chunks: p.Len()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return c.JSON(http.StatusOK, infos)
}
