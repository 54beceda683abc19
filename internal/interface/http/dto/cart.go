package dto

// AddItemRequest 加入购物车
// Quantity用指针：required只要求字段存在，0交给引擎按库存不足处理
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required,min=1" example:"1"`
	Quantity  *int `json:"quantity" binding:"required" example:"2"`
}

// UpdateItemRequest 修改数量（下限为1，删除请用DELETE）
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required" example:"3"`
}
