package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	frontend_domain "github.com/itchan-dev/threads/frontend/internal/domain"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
)

const userCookie = "user_id"

// checkNotModified handles HTTP conditional GET requests using Last-Modified/If-Modified-Since.
// Returns true if a 304 Not Modified response was sent (caller should return early).
func checkNotModified(w http.ResponseWriter, r *http.Request, lastModified time.Time) bool {
	lastModified = lastModified.UTC().Truncate(time.Second)

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Cookie")
	w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))

	if ifModifiedSince := r.Header.Get("If-Modified-Since"); ifModifiedSince != "" {
		if t, err := http.ParseTime(ifModifiedSince); err == nil {
			if !lastModified.After(t.UTC().Truncate(time.Second)) {
				w.WriteHeader(http.StatusNotModified)
				return true
			}
		}
	}
	return false
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

// currentUserId reads the viewer id from the user_id cookie. Malformed values count as anonymous.
func currentUserId(r *http.Request) string {
	c, err := r.Cookie(userCookie)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithStatus(w, r, http.StatusOK, name, data, "")
}

func (h *Handler) renderTemplateWithStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any, errMsg string) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data: data,
		Common: frontend_domain.CommonTemplateData{
			Error:         errMsg,
			CurrentUserId: currentUserId(r),
		},
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.renderTemplateWithStatus(w, r, http.StatusNotFound, "error.html", nil, msg)
}

// renderCard transforms a domain.Thread tree into the view model shown on pages.
func (h *Handler) renderCard(thread *domain.Thread, viewer string) *frontend_domain.ThreadCard {
	card := &frontend_domain.ThreadCard{
		Id:            thread.Id.String(),
		CurrentUserId: viewer,
		Content:       h.TextProcessor.Render(thread.Text),
		Author:        thread.Author,
		CreatedAt:     thread.CreatedAt,
		Comments:      make([]*frontend_domain.ThreadCard, 0, len(thread.Children)),
	}
	if thread.ParentId != nil {
		card.ParentId = thread.ParentId.String()
	}
	if thread.Community != nil {
		card.Community = thread.Community.String()
	}
	for _, child := range thread.Children {
		card.Comments = append(card.Comments, h.renderCard(child, viewer))
	}
	card.HiddenReplies = len(thread.ChildIds) - len(card.Comments)
	return card
}
