// Package cli 命令行接口
//
// 每次命令调用就是一个执行上下文：打开存储、执行一个用例、关闭。
// 多次调用（以及同时运行的API进程）通过同一个存储共享账本和购物车。
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/xiebiao/storefront/internal/app"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
)

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Format     string
}

// NewRootCommand 创建storefront根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "店铺库存与购物车命令行",
		Long:          "浏览商品、管理购物车、查看和重置库存账本、模拟结算。\n每次调用是一个独立的执行上下文，与API进程共享同一个存储。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{FormatText, FormatJSON}, opts.Format) {
				return fmt.Errorf("无效的输出格式 %q，可选: text | json", opts.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径（默认查找./config/config.yaml）")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "输出格式 (text|json)")

	cmd.AddCommand(
		newProductsCommand(opts),
		newProductCommand(opts),
		newCartCommand(opts),
		newStockCommand(opts),
		newCheckoutCommand(opts),
		newWatchCommand(opts),
	)

	return cmd
}

// loadConfig 指定了--config时只读取该文件
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath != "" {
		return config.LoadFrom(o.ConfigPath)
	}
	return config.Load()
}

// withContainer 打开一个执行上下文，执行fn后关闭
func withContainer(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, c *app.Container, out *printer) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c, newPrinter(cmd.OutOrStdout(), opts.Format))
}
