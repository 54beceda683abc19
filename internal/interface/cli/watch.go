package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/storefront/internal/app"
	"github.com/xiebiao/storefront/internal/domain/notify"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "监听其他执行上下文的变更，每次变更后重新读取购物车",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
				signals, cancel := c.Hub.Subscribe()
				defer cancel()

				out.printf("监听变更中（context=%s），Ctrl+C退出\n", c.Hub.Origin())

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return c.Listen(gctx)
				})
				g.Go(func() error {
					return watch(gctx, c, out, signals)
				})

				err := g.Wait()
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

// watch 信号不带数据，收到后重新读取购物车
func watch(ctx context.Context, c *app.Container, out *printer, signals <-chan notify.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-signals:
			view, err := c.GetCart.Execute(ctx)
			if err != nil {
				return err
			}
			if out.json() {
				if err := out.printJSON(map[string]any{"kind": s.Kind.String(), "cart": view}); err != nil {
					return err
				}
				continue
			}
			out.printf("[%s] change kind=%s items=%d total=%s\n",
				time.Now().Format(time.TimeOnly), s.Kind, view.Count, view.TotalDisplay)
		}
	}
}
