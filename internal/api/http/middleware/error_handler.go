package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/splitproof/internal/api/types"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// ErrorHandler 错误处理中间件：处理器通过 c.Error 上报错误，此处统一写出 Problem Details
func ErrorHandler(logger log.Logger) gin.HandlerFunc {
	zl := logger.GetZapLogger()
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem := apitypes.FromError(err, GetRequestID(c))
		problem.Instance = c.Request.URL.Path

		if problem.Status >= http.StatusInternalServerError {
			zl.Error("HTTP error",
				zap.String("code", problem.Code),
				zap.String("request_id", problem.TraceID),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		problem.WriteJSON(c.Writer)
		c.Abort()
	}
}

// Recovery 恢复处理器 panic，返回 500 Problem Details
func Recovery(logger log.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Errorf("HTTP处理器panic: path=%s, err=%v", c.Request.URL.Path, recovered)
		problem := apitypes.NewProblemDetails(apitypes.CodeInternal, http.StatusInternalServerError,
			fmt.Sprintf("internal error: %v", recovered), GetRequestID(c))
		problem.WriteJSON(c.Writer)
		c.Abort()
	})
}

// WriteError 以 Problem Details 写出错误并终止后续处理
func WriteError(c *gin.Context, err error) {
	problem := apitypes.FromError(err, GetRequestID(c))
	problem.Instance = c.Request.URL.Path
	problem.WriteJSON(c.Writer)
	c.Abort()
}
