package httpx

import (
	"fmt"
	"net/http"

	"conference/errors"
)

// StatusFor 错误码到 HTTP 状态码的映射
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse 规范化错误并写出 JSON 错误响应，已写出响应时忽略
func WriteErrorResponse(ctx IHttpContext, err error) error {
	if err == nil || Written(ctx) {
		return nil
	}

	err = errors.Normalize(err)

	code := errors.ErrCodeInternal
	message := err.Error()
	var details map[string]any
	if appErr, ok := err.(errors.IError); ok {
		code = appErr.Code()
		message = appErr.Message()
		details = appErr.Details()
	}
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		// 内部错误不向客户端暴露细节
		message, details = "internal server error", nil
	}

	if jerr := ctx.JSON(status, NewErrorResponse(string(code), message, details)); jerr != nil {
		_ = ctx.String(http.StatusInternalServerError, fmt.Sprintf("%s: %s", code, message))
	}
	MarkWritten(ctx)
	return nil
}

// WriteSuccessResponse 写出 {"data": ...}
func WriteSuccessResponse(ctx IHttpContext, status int, data any) error {
	return ctx.JSON(status, NewSuccessResponse(data))
}
