package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明的 Content-Length 超限时直接拒绝；未声明时由 MaxBytesReader 截断读取
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
