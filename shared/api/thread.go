package api

import (
	"github.com/itchan-dev/threads/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Text        string              `json:"text" validate:"required"`
	Author      domain.UserId       `json:"author" validate:"required"`
	CommunityId *domain.CommunityId `json:"community_id,omitempty"`
	Path        string              `json:"path,omitempty"`
}

type AddCommentRequest struct {
	Text   string        `json:"text" validate:"required"`
	Author domain.UserId `json:"author" validate:"required"`
	Path   string        `json:"path,omitempty"`
}

// Response DTOs

// ThreadResponse wraps a thread with whatever relations the endpoint populated
type ThreadResponse struct {
	*domain.Thread
}

type ThreadListResponse struct {
	domain.ThreadsPage
}
