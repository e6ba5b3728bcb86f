package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualTickRunsRegisteredTasks(t *testing.T) {
	m := NewManual()

	count := 0
	cancel := m.Every(10*time.Second, func() { count++ })

	m.Tick()
	m.Tick()
	assert.Equal(t, 2, count)

	cancel()
	m.Tick()
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, m.TaskCount())
}

func TestManualCancelIsIdempotent(t *testing.T) {
	m := NewManual()

	cancel := m.Every(time.Second, func() {})
	cancel()
	cancel()

	assert.Equal(t, 0, m.TaskCount())
}

func TestManualMultipleTasks(t *testing.T) {
	m := NewManual()

	a, b := 0, 0
	cancelA := m.Every(time.Second, func() { a++ })
	m.Every(time.Second, func() { b++ })

	m.Tick()
	cancelA()
	m.Tick()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestTickerEveryFiresAndStops(t *testing.T) {
	s := NewTicker()

	fired := make(chan struct{}, 16)
	cancel := s.Every(5*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}

	cancel()
	cancel()
}
