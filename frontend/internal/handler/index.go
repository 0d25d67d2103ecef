package handler

import (
	"net/http"

	frontend_domain "github.com/itchan-dev/threads/frontend/internal/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/utils"
)

func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	page, err := utils.ParsePositiveInt(r.URL.Query().Get("page"), "page", 1)
	if err != nil {
		page = 1
	}

	threads, err := h.API.GetThreads(r.Context(), page, h.PageSize)
	if err != nil {
		logger.Log.Error("failed to load threads", "page", page, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusBadGateway)
		return
	}

	viewer := currentUserId(r)
	data := frontend_domain.IndexPage{
		Threads:    make([]*frontend_domain.ThreadCard, 0, len(threads.Threads)),
		Page:       page,
		IsNextPage: threads.IsNextPage,
	}
	for _, thread := range threads.Threads {
		data.Threads = append(data.Threads, h.renderCard(thread, viewer))
	}

	h.renderTemplate(w, r, "index.html", data)
}
