package pg

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"

	"github.com/lib/pq"
)

// Connector lazily opens one connection pool and hands the same handle to every caller.
type Connector struct {
	cfg config.Pg

	mu sync.Mutex
	db *sql.DB
}

func NewConnector(cfg config.Pg) *Connector {
	return &Connector{cfg: cfg}
}

func (c *Connector) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.cfg.Host, c.cfg.Port, c.cfg.User, c.cfg.Password, c.cfg.Dbname)
}

// EnsureConnected opens and pings the pool on first use. Later calls return the memoized handle.
// A failed ping leaves the connector unconnected so the caller decides whether to give up.
func (c *Connector) EnsureConnected(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	logger.Log.Info("connecting to postgres", "host", c.cfg.Host, "port", c.cfg.Port, "dbname", c.cfg.Dbname)
	db, err := sql.Open("postgres", c.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	logger.Log.Info("connected to postgres")

	c.db = db
	return db, nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

type Storage struct {
	db        *sql.DB
	connector *Connector
}

func New(ctx context.Context, connector *Connector) (*Storage, error) {
	db, err := connector.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, connector: connector}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.connector.Close()
}

// uuid[] columns travel as text[] and are cast in SQL
func idsArray(ids []uuid.UUID) pq.StringArray {
	arr := make(pq.StringArray, len(ids))
	for i, id := range ids {
		arr[i] = id.String()
	}
	return arr
}

func parseIds(arr pq.StringArray) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(arr))
	for _, s := range arr {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("malformed id %q in array: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
