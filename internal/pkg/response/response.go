package response

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/service"
	stdjson "encoding/json"
	"errors"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，4xx 业务码同时作为 HTTP 状态码
func Fail(c *gin.Context, businessCode int, message string) {
	status := http.StatusOK
	if businessCode >= 400 && businessCode < 500 {
		status = businessCode
	}
	c.JSON(status, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	var stdTypeError *stdjson.UnmarshalTypeError
	var syntaxError *stdjson.SyntaxError
	if errors.As(err, &unmarshalTypeError) || errors.As(err, &stdTypeError) ||
		errors.As(err, &syntaxError) || errors.Is(err, io.EOF) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	for sentinel, code := range service.ErrorMap {
		if errors.Is(err, sentinel) {
			Fail(c, code, sentinel.Error())
			return
		}
	}

	log.ErrorContext(c.Request.Context(), "unexpected error", "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}
