package checkout

import (
	"slices"
	"strings"
	"time"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
)

const tracerName = "storefront/checkout"

// Settings 结算参数
type Settings struct {
	Pricing         appcart.Pricing
	PaymentMethods  []string
	ProcessingDelay time.Duration // 模拟支付耗时
}

// supports 支付方式是否可用（忽略大小写和首尾空格）
func (s Settings) supports(method string) bool {
	method = strings.TrimSpace(method)
	if method == "" {
		return false
	}
	return slices.ContainsFunc(s.PaymentMethods, func(m string) bool {
		return strings.EqualFold(m, method)
	})
}
