package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/cart"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// lineRecord 购物车行的存储格式
type lineRecord struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Quantity    int             `json:"quantity"`
}

func toRecords(c cart.Cart) []lineRecord {
	records := make([]lineRecord, len(c))
	for i, l := range c {
		records[i] = lineRecord{
			ID:          l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			ImageURL:    l.ImageURL,
			Quantity:    l.Quantity,
		}
	}
	return records
}

func (r lineRecord) toLine() cart.Line {
	return cart.Line{
		ProductID:   r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Quantity:    r.Quantity,
	}
}

// CartRepository 购物车仓储（实现cart.Repository）
// 存储格式：行对象数组，价格序列化为十进制字符串
type CartRepository struct {
	store  Store
	key    string
	logger *zap.Logger
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(store Store, namespace string, logger *zap.Logger) *CartRepository {
	return &CartRepository{store: store, key: CartKey(namespace), logger: logger}
}

// Load 读取购物车，数据损坏时按不存在处理
func (r *CartRepository) Load(ctx context.Context) (cart.Cart, bool, error) {
	data, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, false, apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "读取购物车失败")
	}
	if !found {
		return nil, false, nil
	}

	c, err := decodeCart(data)
	if err != nil {
		corrupt(r.logger, r.key, err)
		return nil, false, nil
	}
	return c, true, nil
}

// Save 整体写入购物车
func (r *CartRepository) Save(ctx context.Context, c cart.Cart) error {
	data, err := json.Marshal(toRecords(c))
	if err != nil {
		return apperrors.Wrap(err, "序列化购物车失败")
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "写入购物车失败")
	}
	return nil
}

// decodeCart 解析并校验购物车：数量必须>0，商品不能重复
func decodeCart(data []byte) (cart.Cart, error) {
	var records []lineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	c := make(cart.Cart, 0, len(records))
	seen := make(map[uint]struct{}, len(records))
	for _, rec := range records {
		if rec.ID == 0 || rec.Quantity <= 0 {
			return nil, fmt.Errorf("invalid line id=%d quantity=%d", rec.ID, rec.Quantity)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate line id=%d", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		c = append(c, rec.toLine())
	}
	return c, nil
}
