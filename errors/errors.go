// Package errors 定义会议系统统一的错误码体系与 AppError 实现
package errors

import (
	stdErrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 客户端错误
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"

	// 服务端错误
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeTimeout  ErrorCode = "TIMEOUT"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeCache    ErrorCode = "CACHE_ERROR"
	ErrCodeQueue    ErrorCode = "QUEUE_ERROR"
)

// IError 错误接口
type IError interface {
	error

	// Code 错误代码
	Code() ErrorCode

	// Message 面向调用方的错误消息
	Message() string

	// Cause 原始错误
	Cause() error

	// Details 附加详情
	Details() map[string]any

	// Stack 创建时的调用栈
	Stack() string

	// WithDetails 返回附加了详情的副本
	WithDetails(details map[string]any) IError
}

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	details map[string]any
	stack   string
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{
		code:    code,
		message: message,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// Newf 按格式创建新错误
func Newf(code ErrorCode, format string, args ...any) IError {
	return &AppError{
		code:    code,
		message: fmt.Sprintf(format, args...),
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// WrapError 包装错误；err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}

	return &AppError{
		code:    code,
		message: message,
		cause:   err,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Code 获取错误代码
func (e *AppError) Code() ErrorCode { return e.code }

// Message 获取错误消息
func (e *AppError) Message() string { return e.message }

// Cause 获取原始错误
func (e *AppError) Cause() error { return e.cause }

// Details 获取错误详情
func (e *AppError) Details() map[string]any {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	return e.details
}

// Stack 获取堆栈信息
func (e *AppError) Stack() string { return e.stack }

// Is 同码的 AppError 视为相等，否则沿 cause 比较
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}

	if appErr, ok := target.(*AppError); ok {
		return e.code == appErr.code
	}

	if e.cause != nil {
		return stdErrors.Is(e.cause, target)
	}

	return false
}

// Unwrap 解包错误（支持 errors.Unwrap）
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithDetails 添加详情
func (e *AppError) WithDetails(details map[string]any) IError {
	merged := make(map[string]any, len(e.details)+len(details))
	for k, v := range e.details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}

	return &AppError{
		code:    e.code,
		message: e.message,
		cause:   e.cause,
		details: merged,
		stack:   e.stack,
	}
}

// 预定义错误变量
var (
	ErrInternal     = NewError(ErrCodeInternal, "内部服务器错误")
	ErrInvalidInput = NewError(ErrCodeInvalidInput, "无效的输入参数")
	ErrNotFound     = NewError(ErrCodeNotFound, "资源未找到")
	ErrConflict     = NewError(ErrCodeConflict, "资源冲突")
	ErrUnauthorized = NewError(ErrCodeUnauthorized, "Authorization required")
	ErrForbidden    = NewError(ErrCodeForbidden, "禁止访问")
	ErrValidation   = NewError(ErrCodeValidation, "数据验证失败")
)

// IsNotFound 检查是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// IsValidation 检查是否为验证错误
func IsValidation(err error) bool {
	return IsErrorCode(err, ErrCodeValidation)
}

// IsConflict 检查是否为冲突错误
func IsConflict(err error) bool {
	return IsErrorCode(err, ErrCodeConflict)
}

// IsErrorCode 检查错误链中最外层 AppError 的代码
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code == code
	}

	return false
}

// GetErrorCode 获取错误代码；非 AppError 视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}

	return ErrCodeInternal
}

// captureStack 捕获堆栈信息
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}

	return builder.String()
}
