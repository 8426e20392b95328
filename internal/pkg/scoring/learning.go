package scoring

import (
	"Lumen/internal/model"
	"fmt"
	"math"
	"time"
)

// SkillDelta 单次学习活动对每个技能的掌握度增量
func SkillDelta(learningType, completionStatus string, durationSec int) float64 {
	base := 0.05
	switch learningType {
	case model.LearningPractice:
		base = 0.08
	case model.LearningProject:
		base = 0.12
	case model.LearningTest:
		if completionStatus == model.CompletionCompleted {
			base = 0.15
		}
	}

	completion := 1.0
	switch completionStatus {
	case model.CompletionCompleted:
		completion = 1.2
	case model.CompletionAbandoned:
		completion = 0.3
	case model.CompletionStarted:
		completion = 0.1
	}

	duration := 1.0
	if durationSec > 0 {
		minutes := math.Min(math.Max(float64(durationSec)/60, 10), 120)
		duration = math.Min(minutes/30, 1.5)
	}

	return math.Min(1, base*completion*duration)
}

// Week ISO 周标识，如 2026-W42
func Week(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

const (
	streakDays         = 7
	masteryThreshold   = 0.8
	hoursMilestone10   = 10.0
	hoursMilestone50   = 50.0
	achievementBadgeFS = "/badges/%s.png"
)

// CheckAchievements 根据更新后的进度与本次活动时长检测达成的成就
// 只负责检测，已解锁成就的去重由调用方完成
func CheckAchievements(progress *model.LearningProgress, durationSec int) []model.Achievement {
	if progress == nil {
		return nil
	}
	var result []model.Achievement

	total := progress.TotalLearningHours
	before := total - float64(durationSec)/3600

	if total > 0 && before <= 0 {
		result = append(result, model.Achievement{
			ID:          "first_learning",
			Name:        "首次学习",
			Description: "完成了第一次学习",
			BadgeURL:    fmt.Sprintf(achievementBadgeFS, "first_learning"),
		})
	}

	if progress.WeeklyStats.DaysActive >= streakDays {
		result = append(result, model.Achievement{
			ID:          "weekly_streak",
			Name:        "学习达人",
			Description: "一周内学习7天",
			BadgeURL:    fmt.Sprintf(achievementBadgeFS, "weekly_streak"),
		})
	}

	for _, skill := range sortedKeys(progress.Skills) {
		if progress.Skills[skill] >= masteryThreshold {
			result = append(result, model.Achievement{
				ID:          "skill_master_" + skill,
				Name:        skill + "专家",
				Description: "掌握了" + skill + "技能",
				BadgeURL:    fmt.Sprintf(achievementBadgeFS, "skill_"+skill),
			})
		}
	}

	if total >= hoursMilestone10 && before < hoursMilestone10 {
		result = append(result, model.Achievement{
			ID:          "10_hours",
			Name:        "学习爱好者",
			Description: "累计学习10小时",
			BadgeURL:    fmt.Sprintf(achievementBadgeFS, "10_hours"),
		})
	}
	if total >= hoursMilestone50 && before < hoursMilestone50 {
		result = append(result, model.Achievement{
			ID:          "50_hours",
			Name:        "学习狂人",
			Description: "累计学习50小时",
			BadgeURL:    fmt.Sprintf(achievementBadgeFS, "50_hours"),
		})
	}

	return result
}

// Efficiency 本周完成数 / 学习小时数 / 2，封顶 1
func Efficiency(stats model.WeeklyStats) float64 {
	if stats.TotalHours <= 0 {
		return 0
	}
	return math.Min(float64(stats.CompletedItems)/stats.TotalHours/2, 1)
}
