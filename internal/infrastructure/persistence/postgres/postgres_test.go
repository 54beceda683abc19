package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts("../../../../migrations/01_kv_entries.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

type postgresSuite struct {
	suite.Suite

	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过需要Docker的测试（-short）")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(postgresSuite))
}

func (s *postgresSuite) SetupSuite() {
	ctx := s.T().Context()

	container, connStr, err := startPostgres(ctx)
	s.Require().NoError(err)
	s.container = container

	s.pool, err = NewPool(ctx, connStr, 10)
	s.Require().NoError(err)
}

func (s *postgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *postgresSuite) TestStore() {
	ctx := s.T().Context()
	store := NewStore(s.pool)

	_, found, err := store.Get(ctx, "shop:productStocks")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(store.Set(ctx, "shop:productStocks", []byte(`{"1":5}`)))
	s.Require().NoError(store.Set(ctx, "shop:productStocks", []byte(`{"1":3}`)))

	got, found, err := store.Get(ctx, "shop:productStocks")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(`{"1":3}`, string(got))

	s.Require().NoError(store.Delete(ctx, "shop:productStocks"))
	_, found, err = store.Get(ctx, "shop:productStocks")
	s.Require().NoError(err)
	s.False(found)
}

func (s *postgresSuite) TestNotifyTransport() {
	transport := NewNotifyTransport(s.pool, "shop")

	ctx, cancel := context.WithCancel(s.T().Context())
	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- transport.Listen(ctx, func(origin string) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, origin)
		})
	}()

	s.Eventually(func() bool {
		_ = transport.Publish(context.Background(), "tab-a")
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	s.NoError(<-done)

	mu.Lock()
	defer mu.Unlock()
	s.Equal("tab-a", got[0])
}

func (s *postgresSuite) TestLocker() {
	ctx := s.T().Context()
	locker := NewLocker(s.pool, "shop")

	release, err := locker.Acquire(ctx)
	s.Require().NoError(err)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx)
	s.Error(err, "锁被持有时等待超时")

	s.Require().NoError(release(ctx))

	release, err = locker.Acquire(ctx)
	s.Require().NoError(err)
	s.NoError(release(ctx))
}
