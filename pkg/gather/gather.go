// Package gather 提供并行取数的聚合原语。
// 与 errgroup 不同，单个分支失败不会中断其他分支：
// 失败分支回退到默认值，错误按分支名返回给调用方决定如何降级。
package gather

import (
	"context"
	"sync"
)

// Branch 一条并行取数分支
type Branch struct {
	Name string
	Run  func(ctx context.Context) error
}

// Fetch 构造一条分支：成功写入 dst，失败写入 fallback
func Fetch[T any](name string, dst *T, fallback T, fn func(ctx context.Context) (T, error)) Branch {
	return Branch{
		Name: name,
		Run: func(ctx context.Context) error {
			v, err := fn(ctx)
			if err != nil {
				*dst = fallback
				return err
			}
			*dst = v
			return nil
		},
	}
}

// All 并行执行所有分支并等待完成，返回按分支名收集的错误。
// ctx 取消会传递给每条分支，由分支内部的 I/O 决定如何中止。
func All(ctx context.Context, branches ...Branch) map[string]error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make(map[string]error)

	for _, b := range branches {
		wg.Add(1)
		go func(b Branch) {
			defer wg.Done()
			if err := b.Run(ctx); err != nil {
				mu.Lock()
				errs[b.Name] = err
				mu.Unlock()
			}
		}(b)
	}

	wg.Wait()
	return errs
}
