package filter

import (
	"errors"
	"fmt"
)

// 过滤编译错误，均属于客户端输入错误
var (
	ErrInvalidField             = errors.New("filter contains invalid field")
	ErrInvalidOperator          = errors.New("filter contains invalid operator")
	ErrInvalidValue             = errors.New("filter contains invalid value")
	ErrMultipleInequalityFields = errors.New("inequality filter is allowed on only one field")
)

// Error 描述第 Index 个过滤条件的编译失败
//
// errors.Is(err, ErrInvalidField) 等判断可直接用于 *Error。
type Error struct {
	Index int
	Spec  Spec
	Err   error
	Cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("filter[%d] %s %s %q: %v", e.Index, e.Spec.Field, e.Spec.Operator, e.Spec.Value, e.Err)
	if e.Cause != nil {
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
