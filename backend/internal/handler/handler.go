package handler

import (
	"context"

	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/shared/config"
	"golang.org/x/sync/singleflight"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread service.ThreadService
	health HealthChecker
	cfg    *config.Config

	ready singleflight.Group
}

func New(thread service.ThreadService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{thread: thread, health: health, cfg: cfg}
}
