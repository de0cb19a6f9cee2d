package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/domain"
	"conference/filter"
)

func TestAppError_Basics(t *testing.T) {
	cause := stdErrors.New("boom")
	err := WrapError(cause, ErrCodeDatabase, "保存失败")

	assert.Equal(t, ErrCodeDatabase, err.Code())
	assert.Equal(t, "保存失败", err.Message())
	assert.Same(t, cause, err.Cause())
	assert.True(t, stdErrors.Is(err, cause))
	assert.False(t, stdErrors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "[DATABASE_ERROR]")
	assert.NotEmpty(t, err.Stack())

	assert.Nil(t, WrapError(nil, ErrCodeInternal, "x"))
}

func TestAppError_WithDetails(t *testing.T) {
	base := NewError(ErrCodeValidation, "bad").WithDetails(map[string]any{"a": 1})
	extended := base.WithDetails(map[string]any{"b": 2})

	assert.Equal(t, map[string]any{"a": 1}, base.Details())
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, extended.Details())
	assert.Equal(t, ErrCodeValidation, extended.Code())
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(stdErrors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewError(ErrCodeConflict, "dup"))
	assert.Equal(t, ErrCodeConflict, GetErrorCode(wrapped))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestNormalize_FilterErrors(t *testing.T) {
	_, err := filter.Compile("Conference", filter.ConferenceCatalog, []filter.Spec{
		{Field: "MONTH", Operator: "GT", Value: "3"},
		{Field: "CITY", Operator: "LT", Value: "M"},
	}, nil, "name")
	require.Error(t, err)

	normalized := Normalize(err)
	assert.Equal(t, ErrCodeInvalidInput, GetErrorCode(normalized))

	var appErr IError
	require.True(t, stdErrors.As(normalized, &appErr))
	assert.Equal(t, "Inequality filter is allowed on only one field.", appErr.Message())
	assert.Equal(t, 1, appErr.Details()["index"])

	_, err = filter.Compile("Conference", filter.ConferenceCatalog, []filter.Spec{{Field: "X", Operator: "EQ"}}, nil, "name")
	assert.Equal(t, "Filter contains invalid field or operator.", Normalize(err).(IError).Message())
}

func TestNormalize_DomainErrors(t *testing.T) {
	nf := domain.NewNotFoundError(domain.KindConference, "abc")
	assert.Equal(t, ErrCodeNotFound, GetErrorCode(Normalize(nf)))
	assert.Contains(t, Normalize(nf).(IError).Message(), "abc")

	_, err := domain.DecodeKey("%%%")
	assert.Equal(t, ErrCodeInvalidInput, GetErrorCode(Normalize(err)))

	assert.Equal(t, ErrCodeTimeout, GetErrorCode(Normalize(context.DeadlineExceeded)))

	plain := stdErrors.New("plain")
	assert.Same(t, plain, Normalize(plain))
	assert.Nil(t, Normalize(nil))
}

func TestWrapDatabaseError(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, WrapDatabaseError(ctx, nil, "op"))

	err := WrapDatabaseError(ctx, domain.NewNotFoundError(domain.KindSession, "k"), "get session")
	assert.True(t, IsNotFound(err))

	err = WrapDatabaseError(ctx, stdErrors.New("disk full"), "save session")
	assert.Equal(t, ErrCodeDatabase, GetErrorCode(err))

	conflict := NewError(ErrCodeConflict, "dup")
	assert.Same(t, conflict, WrapDatabaseError(ctx, conflict, "save"))
}

func TestWrap(t *testing.T) {
	ctx := context.Background()
	original := stdErrors.New("原始错误")

	wrapped := Wrap(ctx, original, ErrCodeInternal, "包装消息")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, original)
	assert.Nil(t, Wrap(ctx, nil, ErrCodeInternal, "消息"))

	logged := WrapWithLog(ctx, original, ErrCodeQueue, "发布失败")
	assert.Equal(t, ErrCodeQueue, GetErrorCode(logged))
}
