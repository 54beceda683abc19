package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/xiebiao/storefront/internal/infrastructure/config"
)

// startMySQL 启动MySQL容器，Docker不可用时跳过
func startMySQL(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("跳过需要Docker的测试（-short）")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.0",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "storefront",
				"MYSQL_DATABASE":      "storefront",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort("3306/tcp"),
			).WithDeadline(3 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := NewDB(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			Host: host, Port: port.Int(), User: "root", Password: "storefront", DBName: "storefront",
			Charset: "utf8mb4", ParseTime: true, Loc: "Local",
			MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: time.Minute,
		},
	})
	require.NoError(t, err)
	return db
}

func TestStore(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	s := NewStore(db)

	_, found, err := s.Get(ctx, "shop:ecommerceCart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "shop:ecommerceCart", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "shop:ecommerceCart", []byte(`[{"id":1,"quantity":2}]`)), "重复写入走upsert")

	got, found, err := s.Get(ctx, "shop:ecommerceCart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, string(got))

	require.NoError(t, s.Delete(ctx, "shop:ecommerceCart"))
	_, found, err = s.Get(ctx, "shop:ecommerceCart")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocker(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	locker, err := NewLocker(ctx, db, "shop")
	require.NoError(t, err)
	_, err = NewLocker(ctx, db, "shop")
	require.NoError(t, err, "锁行已存在时不报错")

	release, err := locker.Acquire(ctx)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := locker.Acquire(ctx)
		if err == nil {
			close(acquired)
			_ = r(ctx)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("锁被持有时不应获取成功")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, release(ctx))
	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal(errors.New("释放后等待者应获得锁"))
	}
}
