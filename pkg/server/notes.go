package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"synopsis/pkg/schema"
	"synopsis/pkg/utils"
)

const (
	notesMentionLimit = 12
	notesSnippetCap   = 220
)

type notesReq struct {
	Project string `json:"project"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Details string `json:"details,omitempty"`
}

type notesResp struct {
	Name     string               `json:"name"`
	Note     schema.CharacterNote `json:"note"`
	ChunkIDs []int                `json:"chunk_ids"`
	Mode     schema.Mode          `json:"mode"`
}

// POST /api/notes
func (s *Server) handlePostNotes(c echo.Context) error {
	var req notesReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/notes", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	p, ok := s.Projects[req.Project]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown project")
	}

	mentions := p.ChunkMentions(req.Name, notesMentionLimit)
	ids := make([]int, len(mentions))
	var excerpts strings.Builder
	for i, ch := range mentions {
		ids[i] = ch.ID
		fmt.Fprintf(&excerpts, "[%d] %s\n", ch.ID, utils.TruncateRunes(utils.CollapseWhitespace(ch.Text), notesSnippetCap))
	}

	note, mode := s.characterNote(c, req, excerpts.String())
	return c.JSON(http.StatusOK, notesResp{Name: req.Name, Note: note, ChunkIDs: ids, Mode: mode})
}

func (s *Server) characterNote(c echo.Context, req notesReq, excerpts string) (schema.CharacterNote, schema.Mode) {
	fallback := schema.CharacterNote{
		Overview:    fmt.Sprintf("%s (%s)", req.Name, firstNonEmpty(req.Role, "role not recorded")),
		Personality: utils.TruncateRunes(strings.TrimSpace(req.Details), notesSnippetCap),
	}
	if s.Inferencer == nil {
		return fallback, schema.ModeFallback
	}

	user := fmt.Sprintf("Character: %s\nRole: %s\nDetails:\n%s\n\nExcerpts:\n%s", req.Name, req.Role, req.Details, excerpts)
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(2048),
		ResponseFormat:      schema.CharacterNoteResponseFormat(),
	}
	out, err := s.Inferencer.Infer(c.Request().Context(), params, notesPrompt, user)
	if err != nil {
		log.Warn("character note inference failed", "name", req.Name, "error", err)
		return fallback, schema.ModeFallback
	}

	var note schema.CharacterNote
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &note); err != nil || note.Overview == "" {
		log.Warn("character note output unparsable", "name", req.Name, "error", err)
		log.Debug("raw model output", "output", out)
		return fallback, schema.ModeFallback
	}
	return note, schema.ModeModel
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
