package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/storefront/internal/app"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/interface/http/router"
)

// shutdownTimeout 优雅关闭的最长等待时间
const shutdownTimeout = 10 * time.Second

// @title        Storefront API
// @version      1.0
// @description  商品目录、购物车、库存账本与模拟结算
// @host         localhost:8080
// @BasePath     /

// main 主程序入口
// 一个API进程就是一个执行上下文，与其他进程（或CLI）通过同一个存储共享账本和购物车
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 存储驱动: %s (namespace=%s)\n", cfg.Storage.Driver, cfg.Storage.Namespace)
	fmt.Printf("  - 信号传输: %s\n", cfg.TransportName())

	// 2. 链路追踪
	shutdownTracing, err := app.InitTracing(cfg.Tracing)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// 3. 组装执行上下文
	c, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer c.Close()
	fmt.Printf("✓ 执行上下文: %s\n", c.Hub.Origin())

	// 4. 会话启动：加载目录，账本不存在时初始化
	seeded, err := c.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("加载商品目录失败: %v", err)
	}
	if seeded {
		fmt.Printf("✓ 库存账本已按目录初始化\n")
	} else {
		fmt.Printf("✓ 沿用已有库存账本\n")
	}

	// 5. HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.FromContainer(c),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 6. 启动：HTTP服务 + 跨上下文信号监听，任一退出则整体退出
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return c.Listen(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", srv.Addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", srv.Addr)
	fmt.Printf("   商品列表: GET http://localhost%s/api/v1/products\n", srv.Addr)
	fmt.Printf("   变更推送: GET http://localhost%s/api/v1/events\n", srv.Addr)
	fmt.Printf("   接口文档: http://localhost%s/swagger/index.html\n", srv.Addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := g.Wait(); err != nil {
		c.Logger.Error("server stopped", zap.Error(err))
		return
	}
	c.Logger.Info("server stopped")
}
