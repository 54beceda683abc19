// Package money 金额格式化
// 金额统一用decimal.Decimal表示，币种用x/text/currency的ISO代码
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ParseCurrency 解析ISO 4217币种代码，如 "USD"、"CNY"
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("无效的币种代码 %q: %w", code, err)
	}
	return unit, nil
}

// Round 按币种标准精度舍入（USD两位、JPY零位）
func Round(amount decimal.Decimal, unit currency.Unit) decimal.Decimal {
	scale, _ := currency.Standard.Rounding(unit)
	return amount.Round(int32(scale))
}

// Format 格式化为 "USD 12.50"
func Format(amount decimal.Decimal, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	return unit.String() + " " + amount.StringFixed(int32(scale))
}
