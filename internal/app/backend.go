package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/messaging"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/file"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/postgres"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/sqlite"
	"github.com/xiebiao/storefront/pkg/mq"
)

// backend 存储后端及其附带的信号传输和存储锁
type backend struct {
	store     kv.Store
	transport notify.Transport
	locker    reservation.Locker // nil表示该驱动不支持存储锁

	redisClient *goredis.Client
	pgPool      *pgxpool.Pool
	closers     []func() error
}

func (b *backend) onClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

func (b *backend) close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// openBackend 按storage.driver打开存储，再按notify.transport打开信号传输
// 返回的backend即使出错也非nil，调用方负责close
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}
	if err := b.openStore(ctx, cfg); err != nil {
		return b, err
	}
	if err := b.openTransport(ctx, cfg, logger); err != nil {
		return b, err
	}
	return b, nil
}

func (b *backend) openStore(ctx context.Context, cfg *config.Config) error {
	ns := cfg.Storage.Namespace

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		b.store = memory.NewStore()
		b.locker = memory.NewLocker()

	case config.DriverFile:
		store, err := file.NewStore(cfg.Storage.Dir)
		if err != nil {
			return err
		}
		b.store = store

	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		b.onClose(store.Close)
		b.store = store

	case config.DriverRedis:
		client, err := b.redis(ctx, cfg)
		if err != nil {
			return err
		}
		b.store = redis.NewStore(client)
		b.locker = redis.NewLocker(client, ns, cfg.Lock.TTL, cfg.Lock.RetryInterval)

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		b.onClose(sqlDB.Close)
		b.store = mysql.NewStore(db)
		if cfg.Lock.Enabled {
			locker, err := mysql.NewLocker(ctx, db, ns)
			if err != nil {
				return err
			}
			b.locker = locker
		}

	case config.DriverPostgres:
		pool, err := b.postgres(ctx, cfg)
		if err != nil {
			return err
		}
		b.store = postgres.NewStore(pool)
		b.locker = postgres.NewLocker(pool, ns)

	default:
		return fmt.Errorf("不支持的存储驱动: %q", cfg.Storage.Driver)
	}
	return nil
}

func (b *backend) openTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ns := cfg.Storage.Namespace

	switch cfg.TransportName() {
	case config.TransportNone:

	case config.TransportMemory:
		b.transport = memory.NewBus()

	case config.TransportFile:
		t, err := file.NewSignalTransport(filepath.Join(cfg.Storage.Dir, "signals"), logger)
		if err != nil {
			return err
		}
		b.transport = t

	case config.TransportRedis:
		client, err := b.redis(ctx, cfg)
		if err != nil {
			return err
		}
		b.transport = redis.NewPubSubTransport(client, ns)

	case config.TransportPostgres:
		pool, err := b.postgres(ctx, cfg)
		if err != nil {
			return err
		}
		b.transport = postgres.NewNotifyTransport(pool, ns)

	case config.TransportRabbitMQ:
		broadcaster, err := mq.NewBroadcaster(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			return err
		}
		b.onClose(broadcaster.Close)
		b.transport = messaging.NewTransport(broadcaster, ns, logger)

	default:
		return fmt.Errorf("不支持的通知传输: %q", cfg.TransportName())
	}
	return nil
}

// redis 存储和传输共用一个客户端
func (b *backend) redis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	if b.redisClient != nil {
		return b.redisClient, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	b.onClose(client.Close)
	b.redisClient = client
	return client, nil
}

// postgres 存储和传输共用一个连接池
func (b *backend) postgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if b.pgPool != nil {
		return b.pgPool, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, err
	}
	b.onClose(func() error {
		pool.Close()
		return nil
	})
	b.pgPool = pool
	return pool, nil
}
