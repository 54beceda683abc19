package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xiebiao/storefront/internal/app"
	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
)

func newProductsCommand(opts *RootOptions) *cobra.Command {
	var (
		categories []string
		minPrice   string
		maxPrice   string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "商品列表（含可用库存）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := appcatalog.ListProductsRequest{Categories: categories}
			var err error
			if req.MinPrice, err = parsePrice("min", minPrice); err != nil {
				return err
			}
			if req.MaxPrice, err = parsePrice("max", maxPrice); err != nil {
				return err
			}

			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
				resp, err := c.ListProducts.Execute(ctx, req)
				if err != nil {
					return err
				}
				if out.json() {
					return out.printJSON(resp)
				}
				return printProducts(out, resp.List)
			})
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "按分类过滤（可重复或逗号分隔）")
	cmd.Flags().StringVar(&minPrice, "min", "", "最低价格（含）")
	cmd.Flags().StringVar(&maxPrice, "max", "", "最高价格（含）")
	return cmd
}

func newProductCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "商品详情",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
				item, err := c.GetProduct.Execute(ctx, id)
				if err != nil {
					return err
				}
				if out.json() {
					return out.printJSON(item)
				}
				out.printf("%s (#%d)\n", item.Name, item.ID)
				if item.Description != "" {
					out.printf("%s\n", item.Description)
				}
				out.printf("分类: %s\n", item.Category)
				out.printf("价格: %s\n", item.PriceDisplay)
				out.printf("库存: %s\n", availability(item.Available, item.SoldOut))
				return nil
			})
		},
	}
}

func printProducts(out *printer, items []appcatalog.ProductItem) error {
	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = fmt.Sprintf("%d\t%s\t%s\t%s\t%s",
			item.ID, item.Name, item.PriceDisplay, availability(item.Available, item.SoldOut), item.Category)
	}
	return out.table("ID\tNAME\tPRICE\tAVAILABLE\tCATEGORY", rows)
}

func availability(available int, soldOut bool) string {
	if soldOut {
		return "sold out"
	}
	return strconv.Itoa(available)
}

func parsePrice(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("无效的价格 --%s=%s", name, value)
	}
	return &d, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的商品ID: %s", s)
	}
	return uint(id), nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("无效的数量: %s", s)
	}
	return n, nil
}
