package handler

import (
	"context"
	"html/template"
	"sync"

	"github.com/itchan-dev/threads/shared/domain"
)

// ThreadAPI is the part of the backend the pages read from
type ThreadAPI interface {
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	GetThreads(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error)
}

type TextRenderer interface {
	Render(text string) template.HTML
}

type Handler struct {
	mu            sync.RWMutex
	templates     map[string]*template.Template
	API           ThreadAPI
	TextProcessor TextRenderer
	PageSize      int
}

func New(templates map[string]*template.Template, api ThreadAPI, textProcessor TextRenderer, pageSize int) *Handler {
	return &Handler{
		templates:     templates,
		API:           api,
		TextProcessor: textProcessor,
		PageSize:      pageSize,
	}
}

// SetTemplates swaps the template set, used by the development reloader
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.mu.Lock()
	h.templates = templates
	h.mu.Unlock()
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tmpl, ok := h.templates[name]
	return tmpl, ok
}
