package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 输入不合法，在任何写入之前拒绝
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 目标不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrInvalidXP 经验值为负
	ErrInvalidXP = fmt.Errorf("%w: 经验值不能为负", ErrValidation)
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsLocalError 校验失败或记录不存在（区别于远程调用失败）
func IsLocalError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}
