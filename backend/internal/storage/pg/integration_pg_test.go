package pg

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	storage  *Storage
	pgConfig config.Pg
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, storage, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "threads"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithInitScripts(filepath.Join("migrations", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// postgres restarts once after running init scripts
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	pgConfig = config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}
	storage, err := New(ctx, NewConnector(pgConfig))
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return storage, container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// truncate gives a test an empty database
func truncate(t *testing.T) {
	t.Helper()
	_, err := storage.db.Exec("TRUNCATE threads, users CASCADE")
	require.NoError(t, err)
}

func mustCreateUser(t *testing.T, name string) *domain.User {
	t.Helper()
	user, err := storage.CreateUser(context.Background(), domain.UserCreationData{Name: name, Image: "https://img.example/" + name + ".png"})
	require.NoError(t, err)
	return user
}

func TestConnector(t *testing.T) {
	ctx := context.Background()

	t.Run("second call returns the same pool", func(t *testing.T) {
		c := NewConnector(pgConfig)
		defer c.Close()

		first, err := c.EnsureConnected(ctx)
		require.NoError(t, err)
		second, err := c.EnsureConnected(ctx)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("concurrent first calls open one pool", func(t *testing.T) {
		c := NewConnector(pgConfig)
		defer c.Close()

		results := make(chan any, 10)
		for i := 0; i < 10; i++ {
			go func() {
				db, err := c.EnsureConnected(ctx)
				if err != nil {
					results <- err
					return
				}
				results <- db
			}()
		}
		first := <-results
		require.NotImplements(t, (*error)(nil), first)
		for i := 1; i < 10; i++ {
			assert.Same(t, first, <-results)
		}
	})

	t.Run("unreachable database", func(t *testing.T) {
		bad := pgConfig
		bad.Port = 1
		c := NewConnector(bad)
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		_, err := c.EnsureConnected(ctx)
		assert.Error(t, err)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := NewConnector(pgConfig)
		_, err := c.EnsureConnected(ctx)
		require.NoError(t, err)
		require.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})
}

func TestPing(t *testing.T) {
	assert.NoError(t, storage.Ping(context.Background()))
}
