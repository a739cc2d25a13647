package util

import (
	"errors"
	"net/http"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeStateInvalid = 40902
	CodeServerErr    = 50001
	CodeRetryable    = 50301
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Fail 把领域错误映射为 HTTP 状态码和业务码。未知错误统一返回 500，不暴露原始信息，
// 同时挂到 gin.Context 上，由请求日志记录。
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, apperr.ErrValidation):
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, apperr.ErrDuplicateObligation):
		Error(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, apperr.ErrInvalidStateTransition):
		Error(c, http.StatusConflict, CodeStateInvalid, err.Error())
	case errors.Is(err, apperr.ErrTransactionFailure):
		Error(c, http.StatusServiceUnavailable, CodeRetryable, "transaction failed, retry")
	default:
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal error")
	}
}
