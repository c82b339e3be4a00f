package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"food_order_api/internal/validation"
)

// ==================== 错误定义 ====================

var (
	// ErrNotFound 资源不存在，具体资源的错误都包装它
	ErrNotFound = errors.New("not found")

	ErrMenuItemNotFound = fmt.Errorf("menu item %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// ValidationError 输入校验失败，按字段给出错误信息
type ValidationError struct {
	Fields validation.FieldErrors
}

// NewValidationError 创建校验错误
func NewValidationError(fields validation.FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldError 单字段校验错误
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: validation.FieldErrors{field: {msg}}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// RetryAfterError 登录被锁定
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *RetryAfterError) Unwrap() error {
	return ErrTooManyAttempts
}
