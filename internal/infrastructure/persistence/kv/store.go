package kv

import (
	"context"
)

// Store 共享键值存储
// 设计说明:
// 1. 所有执行上下文读写同一个Store，值是完整的序列化对象（整体读写，无部分更新）
// 2. Get返回found=false表示键不存在，和空值区分
// 3. 实现：memory、file、sqlite、redis、mysql、postgres
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// 持久化键名（同一命名空间下所有上下文共享）
const (
	ledgerSuffix = "productStocks"
	cartSuffix   = "ecommerceCart"
)

// LedgerKey 库存账本键：<namespace>:productStocks
func LedgerKey(namespace string) string {
	return namespace + ":" + ledgerSuffix
}

// CartKey 购物车键：<namespace>:ecommerceCart
func CartKey(namespace string) string {
	return namespace + ":" + cartSuffix
}
