// Package revalidate tells page renderers that the cached view of a path is stale.
package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/middleware/metrics"
)

const (
	RedisChannel   = "threads:revalidate"
	RedisKeyPrefix = "threads:revalidate:"
	NatsSubject    = "threads.revalidate"
)

type Revalidator interface {
	Revalidate(ctx context.Context, path domain.Path) error
	Close() error
}

// Signal is the message published for every revalidated path.
type Signal struct {
	Path          domain.Path `json:"path"`
	RevalidatedAt time.Time   `json:"revalidated_at"`
}

func encode(path domain.Path, at time.Time) ([]byte, error) {
	return json.Marshal(Signal{Path: path, RevalidatedAt: at.UTC()})
}

// Log only records the path. Used when no broker is configured.
type Log struct{}

func (Log) Revalidate(ctx context.Context, path domain.Path) error {
	logger.Log.Info("path revalidated", "path", path)
	return nil
}

func (Log) Close() error { return nil }

type observed struct {
	backend string
	next    Revalidator
}

// Observed counts every attempt of next in the revalidations metric.
func Observed(backend string, next Revalidator) Revalidator {
	return &observed{backend: backend, next: next}
}

func (o *observed) Revalidate(ctx context.Context, path domain.Path) error {
	err := o.next.Revalidate(ctx, path)
	metrics.ObserveRevalidation(o.backend, err)
	return err
}

func (o *observed) Close() error {
	return o.next.Close()
}

// New builds the revalidator selected in config.
func New(ctx context.Context, cfg *config.Config) (Revalidator, error) {
	var (
		r   Revalidator
		err error
	)
	switch cfg.Public.Revalidate {
	case config.RevalidateRedis:
		r, err = NewRedis(ctx, cfg.Private.RedisURL)
	case config.RevalidateNats:
		r, err = NewNats(NatsOptions{URL: cfg.Private.NatsURL})
	case config.RevalidateLog:
		r = Log{}
	default:
		return nil, fmt.Errorf("unknown revalidate backend %q", cfg.Public.Revalidate)
	}
	if err != nil {
		return nil, err
	}
	return Observed(cfg.Public.Revalidate, r), nil
}
