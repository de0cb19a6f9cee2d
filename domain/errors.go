package domain

import "fmt"

// RepositoryError 通用仓储错误
type RepositoryError struct {
	Code    string
	Message string
	Key     string
	Cause   error
}

func (e *RepositoryError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Key != "" {
		msg += " [" + e.Key + "]"
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// Is 按 Code 比较，便于 errors.Is(err, ErrEntityNotFound)
func (e *RepositoryError) Is(target error) bool {
	t, ok := target.(*RepositoryError)
	return ok && t.Code == e.Code
}

// 常见仓储错误
var (
	ErrEntityNotFound = &RepositoryError{Code: "ENTITY_NOT_FOUND", Message: "entity not found"}
	ErrInvalidKey     = &RepositoryError{Code: "INVALID_KEY", Message: "invalid websafe key"}
	ErrKindMismatch   = &RepositoryError{Code: "KIND_MISMATCH", Message: "key refers to another kind"}
)

// NewNotFoundError 创建携带实体类型与键的未找到错误
func NewNotFoundError(kind string, key string) *RepositoryError {
	return &RepositoryError{
		Code:    ErrEntityNotFound.Code,
		Message: fmt.Sprintf("no %s found with key", kind),
		Key:     key,
	}
}

// NewInvalidKeyError 创建无效键错误
func NewInvalidKeyError(raw string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:    ErrInvalidKey.Code,
		Message: ErrInvalidKey.Message,
		Key:     raw,
		Cause:   cause,
	}
}
