package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	return []Product{
		{ID: 1, Name: "Toothbrush", Price: decimal.RequireFromString("3.50"), Category: "Oral Care", Stock: 5},
		{ID: 2, Name: "Skillet", Price: decimal.RequireFromString("29.99"), Category: "Kitchen", Stock: 2},
		{ID: 3, Name: "Towel", Price: decimal.RequireFromString("12.00"), Category: "Bath", Stock: 0},
		{ID: 4, Name: "Floss", Price: decimal.RequireFromString("1.25"), Category: "Oral Care", Stock: 9},
	}
}

func TestValidate(t *testing.T) {
	t.Run("合法目录", func(t *testing.T) {
		assert.NoError(t, Validate(sampleProducts()))
	})

	t.Run("ID为0", func(t *testing.T) {
		assert.Error(t, Validate([]Product{{ID: 0}}))
	})

	t.Run("负价格", func(t *testing.T) {
		assert.Error(t, Validate([]Product{{ID: 1, Price: decimal.NewFromInt(-1)}}))
	})

	t.Run("负库存", func(t *testing.T) {
		assert.Error(t, Validate([]Product{{ID: 1, Stock: -1}}))
	})

	t.Run("ID重复", func(t *testing.T) {
		assert.Error(t, Validate([]Product{{ID: 1}, {ID: 1}}))
	})
}

func TestFilter(t *testing.T) {
	products := sampleProducts()
	min := decimal.RequireFromString("3")
	max := decimal.RequireFromString("20")

	tests := []struct {
		name   string
		filter Filter
		want   []uint
	}{
		{"不限制", Filter{}, []uint{1, 2, 3, 4}},
		{"按分类（忽略大小写）", Filter{Categories: []string{"oral care"}}, []uint{1, 4}},
		{"多个分类", Filter{Categories: []string{"Kitchen", "Bath"}}, []uint{2, 3}},
		{"最低价", Filter{MinPrice: &min}, []uint{1, 2, 3}},
		{"价格区间", Filter{MinPrice: &min, MaxPrice: &max}, []uint{1, 3}},
		{"分类加价格", Filter{Categories: []string{"Oral Care"}, MaxPrice: &max}, []uint{1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []uint
			for _, p := range tt.filter.Apply(products) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFindAndCategories(t *testing.T) {
	products := sampleProducts()

	p, ok := Find(products, 2)
	assert.True(t, ok)
	assert.Equal(t, "Skillet", p.Name)

	_, ok = Find(products, 99)
	assert.False(t, ok)

	assert.Equal(t, []string{"Oral Care", "Kitchen", "Bath"}, Categories(products))
}
