package reservation

import (
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// 预留与结算领域错误定义
var (
	// ErrOutOfStock 库存不足（非致命提示，不发生任何写入）
	ErrOutOfStock = apperrors.New(apperrors.ErrCodeOutOfStock, "库存不足")

	// ErrEmptyCart 购物车为空，无法结算
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")

	// ErrCheckoutInProgress 结算处理中，期间拒绝任何修改
	ErrCheckoutInProgress = apperrors.New(apperrors.ErrCodeCheckoutInProgress, "订单正在处理中，请稍后")

	// ErrPaymentMethodRequired 未选择或不支持的支付方式
	ErrPaymentMethodRequired = apperrors.New(apperrors.ErrCodePaymentMethodRequired, "请选择支付方式")

	// ErrResetNotConfirmed 库存重置需要用户确认
	ErrResetNotConfirmed = apperrors.New(apperrors.ErrCodeResetNotConfirmed, "重置库存需要确认")
)
