package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/infrastructure/catalogsource"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/logger"
	"github.com/xiebiao/storefront/pkg/circuitbreaker"
	"github.com/xiebiao/storefront/pkg/tracing"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}
	// response.Error通过zap.L()记录内部错误
	zap.ReplaceGlobals(l)
	return l, nil
}

// newCatalogLoader 远程目录优先，否则读取本地文件
func newCatalogLoader(cfg config.CatalogConfig) catalog.Loader {
	if cfg.URL != "" {
		breaker := circuitbreaker.NewCircuitBreaker("catalog",
			circuitbreaker.DefaultConfig(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		return catalogsource.NewHTTPLoader(cfg.URL, cfg.Timeout, breaker)
	}
	return catalogsource.NewFileLoader(cfg.Path)
}

// InitTracing 按配置初始化链路追踪，未开启时返回空的shutdown
func InitTracing(cfg config.TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	shutdown, err := tracing.InitTracer(tracing.Options{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Endpoint,
		SampleRatio: cfg.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化链路追踪失败: %w", err)
	}
	return shutdown, nil
}
