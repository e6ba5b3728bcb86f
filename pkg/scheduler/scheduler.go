// Package scheduler 提供可取消的周期任务抽象。
// 生产环境用 time.Ticker 驱动，测试用 Manual 手动推进，避免依赖真实时钟。
package scheduler

import (
	"sync"
	"time"
)

// CancelFunc 停止一个周期任务，可重复调用
type CancelFunc func()

type Scheduler interface {
	// Every 以固定间隔重复执行 fn，直到 CancelFunc 被调用
	Every(interval time.Duration, fn func()) CancelFunc
}

// Ticker 基于 time.Ticker 的调度器
type Ticker struct{}

func NewTicker() *Ticker {
	return &Ticker{}
}

func (t *Ticker) Every(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
		})
	}
}

// Manual 手动推进的调度器，Tick 同步触发所有在册任务一次
type Manual struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]func())}
}

func (m *Manual) Every(interval time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.tasks[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.tasks, id)
			m.mu.Unlock()
		})
	}
}

// Tick 触发所有在册任务一次
func (m *Manual) Tick() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.tasks))
	for _, fn := range m.tasks {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// TaskCount 在册任务数（测试用）
func (m *Manual) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
