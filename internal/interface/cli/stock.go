package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/xiebiao/storefront/internal/app"
	appstock "github.com/xiebiao/storefront/internal/application/stock"
)

func newStockCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "库存账本",
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "按基础库存减去当前购物车重建账本（会覆盖其他上下文的预留）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
				resp, err := c.ResetStock.Execute(ctx, appstock.ResetStockRequest{Confirm: yes})
				if err != nil {
					return err
				}
				if out.json() {
					return out.printJSON(resp)
				}

				ids := make([]uint, 0, len(resp.Remaining))
				for id := range resp.Remaining {
					ids = append(ids, id)
				}
				slices.Sort(ids)

				rows := make([]string, len(ids))
				for i, id := range ids {
					rows[i] = fmt.Sprintf("%d\t%d", id, resp.Remaining[id])
				}
				out.printf("库存账本已重置\n")
				return out.table("ID\tREMAINING", rows)
			})
		},
	}
	reset.Flags().BoolVarP(&yes, "yes", "y", false, "确认重置")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "库存总览：基础库存、剩余、购物车占用",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
					resp, err := c.GetStock.Execute(ctx)
					if err != nil {
						return err
					}
					if out.json() {
						return out.printJSON(resp)
					}
					return printStock(out, resp)
				})
			},
		},
		reset,
	)

	return cmd
}

func printStock(out *printer, resp *appstock.StockResponse) error {
	if resp.Seeded {
		out.printf("库存账本已按目录初始化\n")
	}
	rows := make([]string, len(resp.Items))
	for i, item := range resp.Items {
		sync := "ok"
		if !item.InSync {
			sync = "drift"
		}
		rows[i] = fmt.Sprintf("%d\t%s\t%d\t%d\t%d\t%s",
			item.ProductID, item.Name, item.BaseStock, item.Remaining, item.InCart, sync)
	}
	return out.table("ID\tNAME\tBASE\tREMAINING\tIN CART\tSYNC", rows)
}
