package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrCatalogUnavailable 目录存储不可达或查询超时
// 与"记录不存在"严格区分：前者是"无法确认"，后者是"确认不存在"
var ErrCatalogUnavailable = errors.New("目录服务暂不可用，请稍后重试")

// InfrastructureError 基础设施错误（数据库、缓存、超时）
type InfrastructureError struct {
	Op  string
	Err error
}

// Infrastructure 包装底层错误，Op 描述失败的操作
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	var infra *InfrastructureError
	if errors.As(err, &infra) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrCatalogUnavailable) 对所有基础设施错误成立
func (e *InfrastructureError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// IsTimeout 判断是否由请求超时或取消导致
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
