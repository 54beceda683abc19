//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. 执行上下文（app.Container）本身已经按配置组装了存储、通知中心、预留引擎和用例
// 2. Wire负责把Container接到HTTP层：Container → Handlers → *gin.Engine
// 3. 运行 `wire gen ./cmd/api` 生成wire_gen.go
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如router.NewHandlers）
// - Injector: 声明最终要构造的目标类型（*gin.Engine）
// - cleanup: Container持有的连接在cleanup中关闭

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/storefront/internal/app"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/interface/http/router"
)

// contextSet 执行上下文
var contextSet = wire.NewSet(
	provideContainer,
)

// httpSet HTTP接口层
var httpSet = wire.NewSet(
	router.NewHandlers,
	provideGinEngine,
)

// provideContainer 组装执行上下文并完成会话启动
// 教学要点：返回cleanup函数，Wire会把它串到Injector的cleanup里
func provideContainer(ctx context.Context, cfg *config.Config) (*app.Container, func(), error) {
	c, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if _, err := c.Bootstrap(ctx); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(c *app.Container, h router.Handlers) *gin.Engine {
	return router.New(c.Config, c.Logger, h)
}

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎和释放资源的cleanup
func InitializeApp(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		contextSet,
		httpSet,
	)
	return nil, nil, nil
}
