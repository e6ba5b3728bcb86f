package util

import (
	"context"
	"time"
)

// Retry 以递增间隔重试瞬时错误，非瞬时错误立即返回。
// attempts 为重试次数，不含首次执行。
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, op func() error) error {
	err := op()
	if err == nil || !IsTransient(err) {
		return err
	}

	for i := 1; i <= attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(i)):
		}

		if err = op(); err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
