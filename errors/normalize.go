package errors

import (
	"context"
	stdErrors "errors"

	"conference/domain"
	"conference/filter"
)

// Normalize 将领域层/基础设施层的错误规范化为 AppError。
//
// 已经是 IError 的错误原样返回；未识别的错误保持原样，
// 由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(IError); ok {
		return err
	}

	// 过滤条件编译错误
	var ferr *filter.Error
	if stdErrors.As(err, &ferr) {
		return WrapError(err, ErrCodeInvalidInput, filterMessage(ferr)).
			WithDetails(map[string]any{
				"index": ferr.Index,
				"field": ferr.Spec.Field,
			})
	}

	// 仓储错误
	if stdErrors.Is(err, domain.ErrEntityNotFound) {
		return WrapError(err, ErrCodeNotFound, notFoundMessage(err))
	}
	if stdErrors.Is(err, domain.ErrInvalidKey) || stdErrors.Is(err, domain.ErrKindMismatch) {
		return WrapError(err, ErrCodeInvalidInput, "invalid websafe key")
	}

	// 上下文
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, ErrCodeTimeout, "操作超时")
	}

	return err
}

func filterMessage(ferr *filter.Error) string {
	switch {
	case stdErrors.Is(ferr.Err, filter.ErrMultipleInequalityFields):
		return "Inequality filter is allowed on only one field."
	case stdErrors.Is(ferr.Err, filter.ErrInvalidValue):
		return "Filter contains invalid value for field " + ferr.Spec.Field + "."
	default:
		return "Filter contains invalid field or operator."
	}
}

func notFoundMessage(err error) string {
	var rerr *domain.RepositoryError
	if stdErrors.As(err, &rerr) && rerr.Key != "" {
		return rerr.Message + ": " + rerr.Key
	}
	return "资源未找到"
}
