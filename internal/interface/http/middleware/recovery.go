package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/response"
)

// Recovery 捕获panic，记录堆栈并返回500
// 替代gin.Recovery()，让panic也走统一响应格式和zap日志
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("请求处理panic",
					zap.Any("panic", r),
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				response.ErrorWithCode(c, apperrors.ErrCodeInternal, "系统内部错误")
				c.Abort()
			}
		}()
		c.Next()
	}
}
