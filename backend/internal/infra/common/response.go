/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 16:02:49
 * @FilePath: \shiftcash-bot\backend\internal\infra\common\response.go
 * @LastEditTime: 2025-10-18 16:02:54
 */
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode 表示统一的错误码，便于客户端识别失败原因。
type ErrorCode string

const (
	ErrBadRequest   ErrorCode = "BAD_REQUEST"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error 描述错误响应的统一结构。
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// Response 是所有运维接口返回的公共结构。
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// Success 以统一格式返回成功结果。
func Success(c *gin.Context, status int, data any, meta any) {
	if status == 0 {
		status = http.StatusOK
	}

	resp := Response{
		Success: true,
		Data:    data,
	}
	if meta != nil {
		resp.Meta = meta
	}

	c.JSON(status, resp)
}

// Fail 以统一格式返回错误结果。
func Fail(c *gin.Context, status int, code ErrorCode, message string, details any) {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}
	if details != nil {
		resp.Error.Details = details
	}

	c.JSON(status, resp)
}
