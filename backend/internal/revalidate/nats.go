package revalidate

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/nats-io/nats.go"
)

type NatsOptions struct {
	URL           string
	MaxReconnects int           // default 5
	ReconnectWait time.Duration // default 2s
}

type publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Nats publishes a Signal on NatsSubject. Delivery is at most once.
type Nats struct {
	conn publisher
	now  func() time.Time
}

func NewNats(opts NatsOptions) (*Nats, error) {
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 5
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name("threads-api"),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s (max_reconnects=%d, wait=%s): %w",
			opts.URL, opts.MaxReconnects, opts.ReconnectWait, err)
	}
	return &Nats{conn: nc, now: time.Now}, nil
}

func (n *Nats) Revalidate(ctx context.Context, path domain.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := encode(path, n.now())
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}
	if err := n.conn.Publish(NatsSubject, msg); err != nil {
		return fmt.Errorf("revalidate %q: %w", path, err)
	}
	return nil
}

func (n *Nats) Close() error {
	return n.conn.Drain()
}
