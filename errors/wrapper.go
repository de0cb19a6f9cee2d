package errors

import (
	"context"
	"fmt"
	"runtime"

	"conference/logging"
)

// Wrap 包装错误，添加错误码和上下文信息
// 在 Service/Handler 层边界使用
func Wrap(ctx context.Context, err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	logging.GetLogger().Debug(ctx, "错误包装: "+msg,
		logging.String("location", fmt.Sprintf("%s:%d", file, line)))

	return WrapError(err, code, msg)
}

// WrapWithLog 包装错误并记录警告日志
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, allFields...)

	return WrapError(err, code, msg)
}

// WrapDatabaseError 包装仓储错误
//
// 已规范化的错误（未找到、无效键等）保持原有错误码，其余视为数据库错误。
func WrapDatabaseError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	if normalized := Normalize(err); normalized != err {
		return normalized
	}
	if _, ok := err.(IError); ok {
		return err
	}

	return WrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("数据库操作失败: %s", operation),
		logging.String("operation", operation),
	)
}

// NewValidationError 创建新的验证错误
func NewValidationError(msg string) error {
	return NewError(ErrCodeValidation, msg)
}
