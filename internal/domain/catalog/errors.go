package catalog

import (
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// 商品目录领域错误定义
var (
	// ErrCatalogUnavailable 目录获取或解析失败（页面级阻断错误）
	ErrCatalogUnavailable = apperrors.New(apperrors.ErrCodeCatalogUnavailable, "商品目录不可用")

	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")
)
