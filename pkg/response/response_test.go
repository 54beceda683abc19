package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"业务错误返回409", apperrors.New(apperrors.ErrCodeOutOfStock, "库存不足"), http.StatusConflict, 40001},
		{"资源不存在返回404", apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在"), http.StatusNotFound, 40402},
		{"参数错误返回400", apperrors.ErrInvalidParams, http.StatusBadRequest, 40900},
		{"未知错误返回500", errors.New("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Nil(t, body.Data)
		})
	}
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":{"status":"ok"}}`, w.Body.String())
}
