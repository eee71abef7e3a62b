package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"synopsis/pkg/inference"
	"synopsis/pkg/project"
	"synopsis/pkg/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	inf := buildInferencer()
	if inf == nil {
		log.Warn("no inference backend configured, all synthesis will use fallbacks")
	}

	projects := loadProjects(projectDir())

	srv := server.NewServer(ctx, inf, projects)
	srv.Echo.Logger.SetLevel(log.DEBUG)

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}

func buildInferencer() inference.Inferencer {
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gemini, err := inference.NewGeminiInferencer(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatalf("failed to initialize gemini: %v", err)
		}
		return gemini
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if apiKey == "" && baseURL == "" {
		return nil
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	openAI := inference.NewOpenAIInferencer(apiKey, model)
	if baseURL != "" {
		openAI.ChangeBaseURL(baseURL)
	}
	return openAI
}

func projectDir() string {
	if dir := os.Getenv("PROJECT_DIR"); dir != "" {
		return dir
	}
	return "data"
}

func loadProjects(dir string) map[string]*project.Project {
	projects := make(map[string]*project.Project)
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.Warnf("failed to scan %s: %v", dir, err)
		return projects
	}
	for _, path := range paths {
		p, err := project.Load(path)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			continue
		}
		if p.Key == "" {
			p.Key = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		projects[p.Key] = p
	}
	log.Infof("Loaded %d projects from %s", len(projects), dir)
	return projects
}
