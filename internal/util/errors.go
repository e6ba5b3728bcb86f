package util

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("未登录用户")
	ErrSessionActive    = errors.New("该用户已有进行中的学习会话")
	ErrNoActiveSession  = errors.New("no active learning session")
	ErrSessionEnded     = errors.New("learning session already ended")
	ErrSessionNotPaused = errors.New("learning session is not paused")
	ErrContentNotFound  = errors.New("learning content not found")
)

// TransientError 标记可重试的存储错误（网络抖动、超时）
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
