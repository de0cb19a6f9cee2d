package httpx

import "time"

// ErrorPayload 通用错误响应
type ErrorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details map[string]any) *ErrorPayload {
	return &ErrorPayload{Code: code, Message: message, Details: details}
}

// SuccessPayload 通用成功响应
type SuccessPayload struct {
	Data any `json:"data"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data any) *SuccessPayload {
	return &SuccessPayload{Data: data}
}

// WebConfig HTTP 服务基础配置
type WebConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}
