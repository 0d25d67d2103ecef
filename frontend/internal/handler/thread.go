package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	frontend_domain "github.com/itchan-dev/threads/frontend/internal/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
)

// ThreadGetHandler renders one thread with its loaded replies.
// An empty id renders nothing.
func (h *Handler) ThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	rawId := chi.URLParam(r, "thread")
	if rawId == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	id, err := uuid.Parse(rawId)
	if err != nil {
		h.renderNotFound(w, r, "Thread not found")
		return
	}

	thread, err := h.API.GetThread(r.Context(), id)
	if errors.Is(err, internal_errors.ErrThreadNotFound) {
		h.renderNotFound(w, r, "Thread not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to load thread", "thread_id", id, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusBadGateway)
		return
	}

	card := h.renderCard(thread, currentUserId(r))
	if checkNotModified(w, r, card.LastActivity()) {
		return
	}

	h.renderTemplate(w, r, "thread.html", frontend_domain.ThreadPage{Card: card})
}
