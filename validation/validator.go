// Package validation 提供请求字段校验，失败时返回 VALIDATION_ERROR
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"conference/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateRequired 验证必填字段
func ValidateRequired(value, entity, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Newf(errors.ErrCodeValidation, "%s '%s' field required", entity, fieldName)
	}
	return nil
}

// ValidateStringLength 验证字符串长度（按字符计）；max <= 0 表示不限
func ValidateStringLength(value, fieldName string, min, max int) error {
	length := len([]rune(value))
	if length < min {
		return errors.Newf(errors.ErrCodeValidation, "%s长度不能少于%d个字符（当前%d）", fieldName, min, length)
	}
	if max > 0 && length > max {
		return errors.Newf(errors.ErrCodeValidation, "%s长度不能超过%d个字符（当前%d）", fieldName, max, length)
	}
	return nil
}

// ValidateNonNegative 验证非负整数
func ValidateNonNegative(value int, fieldName string) error {
	if value < 0 {
		return errors.Newf(errors.ErrCodeValidation, "%s不能为负数（当前%d）", fieldName, value)
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	if email == "" {
		return errors.NewError(errors.ErrCodeValidation, "邮箱不能为空")
	}
	if !emailRegex.MatchString(email) {
		return errors.Newf(errors.ErrCodeValidation, "邮箱格式不正确: %s", email)
	}
	return nil
}

// ValidateEnum 验证枚举值
func ValidateEnum(value, fieldName string, validValues []string) error {
	if slices.Contains(validValues, value) {
		return nil
	}
	return errors.Newf(errors.ErrCodeValidation, "%s的值无效，必须是以下之一: %v", fieldName, validValues)
}

// ParseDate 按 layout 解析日期，空串返回 nil
func ParseDate(value, layout, fieldName string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeValidation,
			fmt.Sprintf("%s格式不正确，应为 %s", fieldName, layout))
	}
	return &t, nil
}

// First 返回第一个非 nil 的错误
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
