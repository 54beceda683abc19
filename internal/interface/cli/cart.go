package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/storefront/internal/app"
	appcart "github.com/xiebiao/storefront/internal/application/cart"
)

func newCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "购物车",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "查看购物车",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
					view, err := c.GetCart.Execute(ctx)
					if err != nil {
						return err
					}
					if out.json() {
						return out.printJSON(view)
					}
					return printCart(out, *view)
				})
			},
		},
		&cobra.Command{
			Use:   "add <id> <quantity>",
			Short: "加入购物车（超过剩余库存时按剩余加入）",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := parseQuantity(args[1])
				if err != nil {
					return err
				}

				return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
					resp, err := c.AddItem.Execute(ctx, appcart.AddItemRequest{ProductID: id, Quantity: qty})
					if err != nil {
						return err
					}
					if out.json() {
						return out.printJSON(resp)
					}
					out.printf("%s，购物车中共%d件，剩余库存%d\n", resp.Message, resp.Quantity, resp.Remaining)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "删除购物车商品（全部归还库存）",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
					resp, err := c.RemoveItem.Execute(ctx, id)
					if err != nil {
						return err
					}
					if out.json() {
						return out.printJSON(resp)
					}
					if !resp.Removed {
						out.printf("商品%d不在购物车中\n", id)
						return nil
					}
					out.printf("已删除商品%d\n", id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <quantity>",
			Short: "修改数量（下限为1）",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := parseQuantity(args[1])
				if err != nil {
					return err
				}

				return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
					resp, err := c.UpdateItem.Execute(ctx, appcart.UpdateItemRequest{ProductID: id, Quantity: qty})
					if err != nil {
						return err
					}
					if out.json() {
						return out.printJSON(resp)
					}
					switch {
					case !resp.Found:
						out.printf("商品%d不在购物车中\n", id)
					case resp.Message != "":
						out.printf("%s，当前数量%d\n", resp.Message, resp.Quantity)
					default:
						out.printf("当前数量%d\n", resp.Quantity)
					}
					return nil
				})
			},
		},
	)

	return cmd
}

func printCart(out *printer, view appcart.View) error {
	if len(view.Lines) == 0 {
		out.printf("购物车为空\n")
		return nil
	}

	rows := make([]string, len(view.Lines))
	for i, l := range view.Lines {
		rows[i] = fmt.Sprintf("%d\t%s\t%d\t%s\t%s",
			l.ProductID, l.Name, l.Quantity, l.Price.StringFixed(2), l.LineTotal.StringFixed(2))
	}
	if err := out.table("ID\tNAME\tQTY\tPRICE\tTOTAL", rows); err != nil {
		return err
	}

	out.printf("\nItems: %d\n", view.Count)
	out.printf("Subtotal: %s\n", view.Subtotal.StringFixed(2))
	out.printf("Shipping: %s\n", view.Shipping.StringFixed(2))
	out.printf("Total: %s\n", view.TotalDisplay)
	return nil
}
