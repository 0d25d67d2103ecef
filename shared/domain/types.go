package domain

import "github.com/google/uuid"

type (
	UserId      = uuid.UUID
	ThreadId    = uuid.UUID
	CommunityId = uuid.UUID

	UserName   = string
	ThreadText = string

	// Path identifies a rendered view whose cache must be refreshed after a write
	Path = string
)
