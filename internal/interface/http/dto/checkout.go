package dto

// PayRequest 支付请求
type PayRequest struct {
	Method string `json:"method" example:"credit-card"`
}
