package setup

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/itchan-dev/threads/frontend/internal/apiclient"
	"github.com/itchan-dev/threads/frontend/internal/handler"
	"github.com/itchan-dev/threads/frontend/internal/markdown"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
)

const (
	baseTemplate           = "base.html"
	partialsTemplate       = "partials.html"
	templateReloadInterval = 5 * time.Second
	defaultAPIBaseURL      = "http://api:8080"
)

type Dependencies struct {
	Handler  *handler.Handler
	Public   config.Public
	StaticFS string
}

func SetupDependencies(ctx context.Context, cfg *config.Config, tmplPath, staticPath string) (*Dependencies, error) {
	templates, err := LoadTemplates(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	h := handler.New(templates, apiclient.New(apiBaseURL), markdown.New(), cfg.Public.DefaultPageSize)
	if os.Getenv("ENV") == "development" {
		go reloadTemplates(ctx, h, tmplPath)
	}

	return &Dependencies{
		Handler:  h,
		Public:   cfg.Public,
		StaticFS: staticPath,
	}, nil
}

func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

var funcs = template.FuncMap{
	"sub":        sub,
	"add":        add,
	"dict":       dict,
	"formatTime": formatTime,
}

// LoadTemplates parses every page in tmplPath together with the base layout and shared partials.
func LoadTemplates(tmplPath string) (map[string]*template.Template, error) {
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFiles(
			path.Join(tmplPath, baseTemplate),
			path.Join(tmplPath, f.Name()),
			path.Join(tmplPath, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	return templates, nil
}

func reloadTemplates(ctx context.Context, h *handler.Handler, tmplPath string) {
	ticker := time.NewTicker(templateReloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			templates, err := LoadTemplates(tmplPath)
			if err != nil {
				logger.Log.Warn("template reload failed", "error", err)
				continue
			}
			h.SetTemplates(templates)
		case <-ctx.Done():
			return
		}
	}
}
