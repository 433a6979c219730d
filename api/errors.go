package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"zenthra/api/openapi"
	"zenthra/ledger"
)

// 錯誤訊息只回傳給客戶端已知的錯誤，其餘以狀態碼文字取代
func errorBody(status int, err error) openapi.Error {
	if status >= http.StatusInternalServerError {
		return openapi.Error{Message: http.StatusText(status)}
	}
	return openapi.Error{Message: err.Error()}
}

// isUnavailable 判斷是否為 ledger 暫時無法服務
func isUnavailable(err error) bool {
	return errors.Is(err, ledger.ErrTransientStore) || errors.Is(err, ledger.ErrLockTimeout)
}

var unavailable = openapi.Error{Message: http.StatusText(http.StatusServiceUnavailable)}

// ParamErrorHandler 處理路徑與查詢參數綁定失敗
func ParamErrorHandler(c *gin.Context, err error, statusCode int) {
	c.AbortWithStatusJSON(statusCode, errorBody(statusCode, err))
}

// ErrorMiddleware 把 strict handler 留在 gin context 但尚未寫出的錯誤轉成 JSON 回應，
// 包含 request body 解析失敗(400)以及 handler 回傳的非預期錯誤(500)
func (impl *ServerImpl) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			impl.logger.Error("request failed",
				slog.String("method", c.Request.Method),
				slog.String("path", c.FullPath()),
				slog.Any("error", err),
			)
		}
		c.JSON(status, errorBody(status, err))
	}
}
