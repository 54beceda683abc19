package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xiebiao/storefront/internal/app"
	appcheckout "github.com/xiebiao/storefront/internal/application/checkout"
)

func newCheckoutCommand(opts *RootOptions) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "模拟支付并清空购物车（库存不归还）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *app.Container, out *printer) error {
				// 1. 报价（购物车为空时直接失败）
				quote, err := c.Quote.Execute(ctx)
				if err != nil {
					return err
				}
				if !out.json() {
					out.printf("应付: %s（%d件，含运费%s）\n", quote.TotalDisplay, quote.Count, quote.Shipping.StringFixed(2))
					out.printf("支付处理中...\n")
				}

				// 2. 支付
				receipt, err := c.Pay.Execute(ctx, appcheckout.PayRequest{Method: method})
				if err != nil {
					return err
				}
				if out.json() {
					return out.printJSON(receipt)
				}
				out.printf("支付成功\n")
				out.printf("  回执: %s\n", receipt.ID)
				out.printf("  方式: %s\n", receipt.Method)
				out.printf("  金额: %s\n", receipt.TotalDisplay)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "支付方式，取值见checkout.payment_methods配置")
	return cmd
}
