package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/threads/shared/api"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/utils"
)

const defaultPage = 1

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Create(r.Context(), domain.ThreadCreationData{
		Text:        body.Text,
		Author:      body.Author,
		CommunityId: body.CommunityId,
		Path:        body.Path,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.ThreadResponse{Thread: thread})
}

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := utils.ParsePositiveInt(query.Get("page"), "page", defaultPage)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	pageSize, err := utils.ParsePositiveInt(query.Get("page_size"), "page_size", h.cfg.Public.DefaultPageSize)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	threads, err := h.thread.List(r.Context(), page, pageSize)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ThreadListResponse{ThreadsPage: *threads})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "thread"), "thread id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.GetById(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: thread})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "thread"), "thread id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.AddCommentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.thread.AddComment(r.Context(), domain.CommentCreationData{
		ThreadId: id,
		Text:     body.Text,
		Author:   body.Author,
		Path:     body.Path,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.ThreadResponse{Thread: comment})
}
