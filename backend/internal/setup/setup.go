package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/backend/internal/handler"
	"github.com/itchan-dev/threads/backend/internal/revalidate"
	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/backend/internal/storage/memory"
	"github.com/itchan-dev/threads/backend/internal/storage/pg"
	"github.com/itchan-dev/threads/backend/internal/utils"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
)

// Storage is everything the API and the admin tool need from a backing store.
type Storage interface {
	service.ThreadStorage
	CreateUser(ctx context.Context, data domain.UserCreationData) (*domain.User, error)
	GetUser(ctx context.Context, id domain.UserId) (*domain.User, error)
	Ping(ctx context.Context) error
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config      *config.Config
	Storage     Storage
	Revalidator revalidate.Revalidator
	Thread      service.ThreadService
	Handler     *handler.Handler
}

func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case config.StoragePg:
		storage, err := pg.New(ctx, pg.NewConnector(cfg.Private.Pg))
		if err != nil {
			return nil, err
		}
		return storage, nil
	case config.StorageMemory:
		seed, err := seedUsers(cfg.Public.SeedUsers)
		if err != nil {
			return nil, err
		}
		storage := memory.New()
		storage.Seed(seed...)
		logger.Log.Warn("using in-memory storage, data is lost on restart", "seed_users", len(seed))
		return storage, nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
}

func seedUsers(seed []config.SeedUser) ([]domain.User, error) {
	users := make([]domain.User, 0, len(seed))
	for _, u := range seed {
		id, err := uuid.Parse(u.Id)
		if err != nil {
			return nil, fmt.Errorf("invalid seed user id %q: %w", u.Id, err)
		}
		users = append(users, domain.User{Id: id, Name: u.Name, Image: u.Image})
	}
	return users, nil
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	revalidator, err := revalidate.New(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	thread := service.NewThread(storage, utils.NewThreadValidator(cfg.Public.ThreadTextMaxLen), revalidator, service.ThreadConfig{
		DefaultPageSize: cfg.Public.DefaultPageSize,
		MaxPageSize:     cfg.Public.MaxPageSize,
		ReplyDepth:      cfg.ReplyDepth(),
	})

	return &Dependencies{
		Config:      cfg,
		Storage:     storage,
		Revalidator: revalidator,
		Thread:      thread,
		Handler:     handler.New(thread, storage, cfg),
	}, nil
}

func (d *Dependencies) Close() error {
	return errors.Join(d.Revalidator.Close(), d.Storage.Cleanup())
}
