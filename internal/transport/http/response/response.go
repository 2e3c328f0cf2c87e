package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"user-api/internal/domain"
)

// Resp 统一响应体；成功 {message,data}，失败 {message,errors?}
type Resp struct {
	Message string             `json:"message"`
	Data    any                `json:"data,omitempty"`
	Errors  []domain.Violation `json:"errors,omitempty"`
}

func OK(msg string, data any) Resp {
	return Resp{Message: msg, Data: data}
}

func Error(msg string) Resp {
	return Resp{Message: msg}
}

// JSON 成功写回
func JSON(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, OK(msg, data))
}

// Fail 按错误分类写回；内部错误只记录不回显
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := StatusOf(err)
	body := Error(err.Error())
	var de *domain.Error
	if errors.As(err, &de) {
		body.Errors = de.Violations
	}
	if domain.KindOf(err) == domain.KindInternal {
		body = Error(MsgInternal)
	}
	c.AbortWithStatusJSON(status, body)
}

// Abort 中间件直接拒绝
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(msg))
}
