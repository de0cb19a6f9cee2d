package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharederrors "conference/errors"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("x", "Conference", "name"))

	err := ValidateRequired("  ", "Conference", "name")
	require.Error(t, err)
	assert.True(t, sharederrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Conference 'name' field required")
}

func TestValidateStringLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		min     int
		max     int
		wantErr bool
	}{
		{name: "有效长度", value: "hello", min: 3, max: 10},
		{name: "长度太短", value: "ab", min: 3, max: 10, wantErr: true},
		{name: "长度太长", value: "abcdefghijk", min: 3, max: 10, wantErr: true},
		{name: "不限上限", value: "abcdefghijk", min: 3, max: 0},
		{name: "按字符计", value: "会议名称", min: 4, max: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStringLength(tt.value, "字段", tt.min, tt.max)
			if tt.wantErr {
				assert.True(t, sharederrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("speaker@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@b"))
}

func TestValidateEnum(t *testing.T) {
	values := []string{"XS_M", "NOT_SPECIFIED"}
	assert.NoError(t, ValidateEnum("XS_M", "teeShirtSize", values))
	assert.True(t, sharederrors.IsValidation(ValidateEnum("HUGE", "teeShirtSize", values)))
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative(0, "maxAttendees"))
	assert.Error(t, ValidateNonNegative(-1, "maxAttendees"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04", "2006-01-02", "startDate")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("", "2006-01-02", "startDate")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("04/03/2026", "2006-01-02", "startDate")
	assert.True(t, sharederrors.IsValidation(err))
}

func TestFirst(t *testing.T) {
	assert.NoError(t, First(nil, nil))
	err := First(nil, ValidateEmail(""), ValidateRequired("", "Session", "title"))
	assert.Contains(t, err.Error(), "邮箱不能为空")
}
