package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/middleware/metrics"
	"golang.org/x/sync/errgroup"
)

// to mock service in tests
type ThreadService interface {
	Create(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error)
	List(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error)
	GetById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	AddComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error)
}

type ThreadStorage interface {
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error)
	CreateComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]*domain.Thread, error)
	GetTopLevelThreads(ctx context.Context, offset, limit int) ([]*domain.Thread, error)
	CountTopLevelThreads(ctx context.Context) (int, error)
	GetUserSummaries(ctx context.Context, ids []domain.UserId) (map[domain.UserId]domain.UserSummary, error)
}

type ThreadValidator interface {
	Text(text string) error
}

type Revalidator interface {
	Revalidate(ctx context.Context, path domain.Path) error
}

type ThreadConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	// ReplyDepth is how many levels of replies GetById resolves into records
	ReplyDepth int
}

type Thread struct {
	storage     ThreadStorage
	validator   ThreadValidator
	revalidator Revalidator
	cfg         ThreadConfig
}

func NewThread(storage ThreadStorage, validator ThreadValidator, revalidator Revalidator, cfg ThreadConfig) ThreadService {
	return &Thread{storage: storage, validator: validator, revalidator: revalidator, cfg: cfg}
}

func (s *Thread) Create(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	if err := s.validator.Text(data.Text); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	// communities are not supported yet
	data.CommunityId = nil

	thread, err := s.storage.CreateThread(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	metrics.ThreadsCreated.Inc()

	s.revalidate(ctx, data.Path)
	return thread, nil
}

func (s *Thread) List(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
	page = max(1, page)
	if pageSize < 1 {
		pageSize = s.cfg.DefaultPageSize
	}
	pageSize = min(pageSize, s.cfg.MaxPageSize)
	skip := (page - 1) * pageSize

	var (
		threads []*domain.Thread
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if threads, err = s.storage.GetTopLevelThreads(gctx, skip, pageSize); err != nil {
			return err
		}
		return s.populateList(gctx, threads)
	})
	g.Go(func() error {
		var err error
		total, err = s.storage.CountTopLevelThreads(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}

	return &domain.ThreadsPage{
		Threads:    threads,
		IsNextPage: total > skip+len(threads),
	}, nil
}

func (s *Thread) GetById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	thread, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	if err := s.populate(ctx, []*domain.Thread{thread}, s.cfg.ReplyDepth); err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return thread, nil
}

func (s *Thread) AddComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
	if err := s.validator.Text(data.Text); err != nil {
		return nil, fmt.Errorf("unable to add comment: %w", err)
	}

	comment, err := s.storage.CreateComment(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("unable to add comment: %w", err)
	}
	metrics.CommentsAdded.Inc()

	s.revalidate(ctx, data.Path)
	return comment, nil
}

// revalidate runs after the write is committed, so a failed signal is logged and not returned
func (s *Thread) revalidate(ctx context.Context, path domain.Path) {
	if path == "" {
		return
	}
	if err := s.revalidator.Revalidate(ctx, path); err != nil {
		logger.Log.Warn("failed to revalidate path", "path", path, "error", err)
	}
}
