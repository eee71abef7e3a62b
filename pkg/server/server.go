package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"synopsis/pkg/flight"
	"synopsis/pkg/inference"
	"synopsis/pkg/project"
	"synopsis/pkg/schema"
	"synopsis/pkg/synthesis"
)

// resultKey identifies one synthesis request for caching purposes.
type resultKey struct {
	Project string
	Start   int
	End     int
	Grain   int
}

var errEmptyWindow = errors.New("requested window contains no chunks")

type Server struct {
	Echo       *echo.Echo
	Inferencer inference.Inferencer
	Projects   map[string]*project.Project
	Ctx        context.Context

	engine  *synthesis.Engine
	results *flight.Cache[resultKey, schema.SynthesisResult]
}

func NewServer(ctx context.Context, inf inference.Inferencer, projects map[string]*project.Project) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:       e,
		Inferencer: inf,
		Projects:   projects,
		Ctx:        ctx,
		engine:     synthesis.New(inf, synthesis.Config{}),
	}
	s.results = flight.NewCache(time.Hour, s.synthesize)

	s.registerRoutes()
	return s
}

// synthesize is the cache work function: identical concurrent requests share
// one model call, keyed by project, window range, and grain.
func (s *Server) synthesize(k resultKey) (schema.SynthesisResult, error) {
	p, ok := s.Projects[k.Project]
	if !ok {
		return schema.SynthesisResult{}, fmt.Errorf("unknown project %q", k.Project)
	}
	window := p.Window(k.Start, k.End)
	if len(window) == 0 {
		return schema.SynthesisResult{}, errEmptyWindow
	}
	return s.engine.Synthesize(s.Ctx, window, k.Grain), nil
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)
	s.Echo.GET("/api/projects", s.handleGetProjects)

	api := s.Echo.Group("/api")
	api.POST("/synthesize", s.handlePostSynthesize)   // cited summary for a chunk window
	api.POST("/variations", s.handlePostVariations)   // rephrasings of a summary, diffed against it
	api.POST("/notes", s.handlePostNotes)             // structured character note
	api.POST("/summaries", s.handlePostSummaries)     // fill missing per-chunk prior summaries
	api.POST("/plot", s.handlePostPlot)               // dialogue-led draft script for a window
	api.POST("/reconstruct", s.handlePostReconstruct) // recompose per-chunk summaries into one
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
