package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（非HTTP状态码），方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := h.addItem.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只进日志
	if appErr.Err != nil {
		zap.L().Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
	}

	c.JSON(statusOf(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(statusOf(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// statusOf 业务错误码映射HTTP状态码
// 4xxxx → 4xx（前3位），5xxxx → 500
func statusOf(code int) int {
	switch {
	case code >= 50000:
		return http.StatusInternalServerError
	case code >= 40900:
		return http.StatusBadRequest
	case code >= 40400:
		return http.StatusNotFound
	case code >= 40000:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}
