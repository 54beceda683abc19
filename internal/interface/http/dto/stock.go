package dto

// ResetStockRequest 重置库存账本
// confirm必须为true，防止误操作
type ResetStockRequest struct {
	Confirm bool `json:"confirm" example:"true"`
}
