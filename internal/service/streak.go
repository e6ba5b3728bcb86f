package service

import (
	"flightprep_backend/internal/model"
	"time"
)

// AdvanceStreak 纯函数：依据新完成会话的日期推进连续学习天数。
// 同一天多次学习不重复累计；隔一天继续累计；隔两天及以上或无记录时重置为 1。
// 日界按传入时区计算。
func AdvanceStreak(p model.UserLearningProfile, completedAt time.Time, loc *time.Location) model.UserLearningProfile {
	if loc == nil {
		loc = time.Local
	}

	today := dateOnly(completedAt.In(loc))

	if p.LastStudiedAt == nil {
		p.CurrentStreakDays = 1
	} else {
		last := dateOnly(p.LastStudiedAt.In(loc))
		switch {
		case last.Equal(today):
			// 今天已学习过，连续天数不变
			if p.CurrentStreakDays == 0 {
				p.CurrentStreakDays = 1
			}
		case last.Equal(today.AddDate(0, 0, -1)):
			p.CurrentStreakDays++
		default:
			p.CurrentStreakDays = 1
		}
	}

	if p.CurrentStreakDays > p.LongestStreakDays {
		p.LongestStreakDays = p.CurrentStreakDays
	}

	completed := completedAt
	p.LastStudiedAt = &completed

	return p
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
