// Package memory keeps users and threads in process memory.
// It honours the same contract as the postgres storage and backs local development and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
)

type Storage struct {
	mu      sync.RWMutex
	users   map[domain.UserId]*domain.User
	threads map[domain.ThreadId]*domain.Thread
	// top-level ids in insertion order
	topLevel []domain.ThreadId
	now      func() time.Time
}

func New() *Storage {
	return &Storage{
		users:   make(map[domain.UserId]*domain.User),
		threads: make(map[domain.ThreadId]*domain.Thread),
		now:     time.Now,
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Cleanup() error {
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, data domain.UserCreationData) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &domain.User{Id: uuid.New(), Name: data.Name, Image: data.Image, ThreadIds: []domain.ThreadId{}}
	s.users[user.Id] = user
	return cloneUser(user), nil
}

// Seed stores users with fixed ids, replacing any user with the same id.
func (s *Storage) Seed(users ...domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range users {
		user := cloneUser(&u)
		if user.ThreadIds == nil {
			user.ThreadIds = []domain.ThreadId{}
		}
		s.users[user.Id] = user
	}
}

func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, internal_errors.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Storage) GetUserSummaries(ctx context.Context, ids []domain.UserId) (map[domain.UserId]domain.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make(map[domain.UserId]domain.UserSummary, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			summaries[id] = user.Summary()
		}
	}
	return summaries, nil
}

func (s *Storage) newThread(text domain.ThreadText, author domain.UserId, parent *domain.ThreadId) *domain.Thread {
	return &domain.Thread{
		Id:        uuid.New(),
		Text:      text,
		AuthorId:  author,
		ParentId:  parent,
		CreatedAt: s.now(),
		ChildIds:  []domain.ThreadId{},
	}
}

func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[data.Author]
	if !ok {
		return nil, internal_errors.ErrUserNotFound
	}

	thread := s.newThread(data.Text, data.Author, nil)
	s.threads[thread.Id] = thread
	s.topLevel = append(s.topLevel, thread.Id)
	user.ThreadIds = append(user.ThreadIds, thread.Id)
	return thread.Clone(), nil
}

func (s *Storage) CreateComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.threads[data.ThreadId]
	if !ok {
		return nil, internal_errors.ErrThreadNotFound
	}
	if _, ok := s.users[data.Author]; !ok {
		return nil, internal_errors.ErrUserNotFound
	}

	parentId := parent.Id
	comment := s.newThread(data.Text, data.Author, &parentId)
	s.threads[comment.Id] = comment
	parent.ChildIds = append(parent.ChildIds, comment.Id)
	return comment.Clone(), nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[id]
	if !ok {
		return nil, internal_errors.ErrThreadNotFound
	}
	return thread.Clone(), nil
}

func (s *Storage) GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]*domain.Thread, 0, len(ids))
	for _, id := range ids {
		if thread, ok := s.threads[id]; ok {
			threads = append(threads, thread.Clone())
		}
	}
	return threads, nil
}

func (s *Storage) GetTopLevelThreads(ctx context.Context, offset, limit int) ([]*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*domain.Thread, 0, len(s.topLevel))
	for i := len(s.topLevel) - 1; i >= 0; i-- {
		ordered = append(ordered, s.threads[s.topLevel[i]])
	}
	// newest first, later insertion wins ties
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	if offset >= len(ordered) {
		return []*domain.Thread{}, nil
	}
	end := offset + limit
	if end > len(ordered) {
		end = len(ordered)
	}
	threads := make([]*domain.Thread, 0, end-offset)
	for _, thread := range ordered[offset:end] {
		threads = append(threads, thread.Clone())
	}
	return threads, nil
}

func (s *Storage) CountTopLevelThreads(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topLevel), nil
}

// Len is the number of thread records of any level.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.ThreadIds = append([]domain.ThreadId{}, u.ThreadIds...)
	return &c
}
