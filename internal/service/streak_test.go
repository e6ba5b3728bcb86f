package service

import (
	"flightprep_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func profileWithStreak(current, longest int, lastStudied time.Time) model.UserLearningProfile {
	return model.UserLearningProfile{
		UserID:            1,
		CurrentStreakDays: current,
		LongestStreakDays: longest,
		LastStudiedAt:     &lastStudied,
	}
}

func TestAdvanceStreakFirstSession(t *testing.T) {
	p := model.UserLearningProfile{UserID: 1}
	got := AdvanceStreak(p, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, 1, got.CurrentStreakDays)
	assert.Equal(t, 1, got.LongestStreakDays)
	assert.NotNil(t, got.LastStudiedAt)
}

func TestAdvanceStreakSameDayIdempotent(t *testing.T) {
	last := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := profileWithStreak(4, 5, last)

	got := AdvanceStreak(p, time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 4, got.CurrentStreakDays, "same-day session must not grow the streak")
	assert.Equal(t, 5, got.LongestStreakDays)
}

func TestAdvanceStreakConsecutiveDay(t *testing.T) {
	last := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	p := profileWithStreak(4, 5, last)

	got := AdvanceStreak(p, time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 4+1, got.CurrentStreakDays)
	assert.Equal(t, 5, got.LongestStreakDays)
}

func TestAdvanceStreakGapResets(t *testing.T) {
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	p := profileWithStreak(4, 5, last)

	got := AdvanceStreak(p, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 1, got.CurrentStreakDays)
	assert.Equal(t, 5, got.LongestStreakDays, "longest streak survives a reset")
}

func TestAdvanceStreakUpdatesLongest(t *testing.T) {
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	p := profileWithStreak(5, 5, last)

	got := AdvanceStreak(p, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 6, got.CurrentStreakDays)
	assert.Equal(t, 6, got.LongestStreakDays)
}

func TestAdvanceStreakTimezoneBoundary(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// UTC 1 月 1 日 23 点在东京已是 1 月 2 日，按东京时区应视为连续天
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, tokyo)
	p := profileWithStreak(2, 2, last)

	got := AdvanceStreak(p, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, 3, got.CurrentStreakDays)
	assert.Equal(t, 3, got.LongestStreakDays)
}
