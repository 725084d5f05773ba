package awards

import (
	"ecoQuestAPI/internal/ledger"
)

type CriteriaType string

const (
	CriteriaCompletedQuests CriteriaType = "completed_quests"
	CriteriaStreak          CriteriaType = "streak"
	CriteriaTotalPoints     CriteriaType = "total_points"
	CriteriaDailyPoints     CriteriaType = "daily_points"
)

type Badge struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Icon          string       `json:"icon"`
	CriteriaType  CriteriaType `json:"criteria_type"`
	CriteriaValue int          `json:"criteria_value"`
}

type BadgeWithStatus struct {
	Badge
	Unlocked bool `json:"unlocked"`
}

var badges = []Badge{
	{ID: "first-quest", Name: "First Steps", Description: "Complete your first quest", Icon: "leaf", CriteriaType: CriteriaCompletedQuests, CriteriaValue: 1},
	{ID: "quest-master", Name: "Quest Master", Description: "Complete 10 quests", Icon: "trophy", CriteriaType: CriteriaCompletedQuests, CriteriaValue: 10},
	{ID: "week-streak", Name: "Habit Forming", Description: "Keep a 7 day streak", Icon: "flame", CriteriaType: CriteriaStreak, CriteriaValue: 7},
	{ID: "month-streak", Name: "Unstoppable", Description: "Keep a 30 day streak", Icon: "fire", CriteriaType: CriteriaStreak, CriteriaValue: 30},
	{ID: "point-collector", Name: "Point Collector", Description: "Earn 1000 points in total", Icon: "star", CriteriaType: CriteriaTotalPoints, CriteriaValue: 1000},
	{ID: "big-day", Name: "Big Day", Description: "Earn 200 points in a single day", Icon: "sun", CriteriaType: CriteriaDailyPoints, CriteriaValue: 200},
}

func All() []Badge {
	return badges
}

// UnlockedBy checks the badge predicate against a ledger snapshot. Every
// criterion reads a record-high or lifetime counter, so a badge that was
// unlocked once stays unlocked on every later evaluation.
func (b Badge) UnlockedBy(s ledger.Snapshot) bool {
	switch b.CriteriaType {
	case CriteriaCompletedQuests:
		return s.CompletedQuests >= b.CriteriaValue
	case CriteriaStreak:
		return s.HighestStreak >= b.CriteriaValue
	case CriteriaTotalPoints:
		return s.TotalPoints >= b.CriteriaValue
	case CriteriaDailyPoints:
		return s.HighestDailyPoints >= b.CriteriaValue
	default:
		return false
	}
}

// Evaluate derives the unlock status of every badge. Pure: same snapshot
// in, same set out.
func Evaluate(s ledger.Snapshot) []BadgeWithStatus {
	out := make([]BadgeWithStatus, 0, len(badges))
	for _, b := range badges {
		out = append(out, BadgeWithStatus{Badge: b, Unlocked: b.UnlockedBy(s)})
	}
	return out
}

// UnlockedIDs returns just the identifiers of unlocked badges.
func UnlockedIDs(s ledger.Snapshot) []string {
	var ids []string
	for _, b := range badges {
		if b.UnlockedBy(s) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
