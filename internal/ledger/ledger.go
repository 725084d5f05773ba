package ledger

import (
	"errors"
	"time"
)

// ErrNegativePoints marks a caller bug, not a runtime condition.
var ErrNegativePoints = errors.New("points must be non-negative")

// Ledger aggregates a user's points, streak and record-high statistics.
// It is not safe for concurrent use; the owning service serializes access.
type Ledger struct {
	totalPoints int
	todayPoints int

	currentStreak        int
	highestStreak        int
	highestStreakAt      *time.Time
	highestDailyPoints   int
	highestDailyPointsAt *time.Time

	completedQuests int
	lastCompletedAt *time.Time

	actionsToday map[string]int
	actionsTotal map[string]int

	lastCredit *time.Time

	now func() time.Time
}

// Snapshot is an immutable read of the ledger, safe to hand to callers.
type Snapshot struct {
	TotalPoints          int            `json:"total_points"`
	TodayPoints          int            `json:"today_points"`
	CurrentStreak        int            `json:"current_streak"`
	HighestStreak        int            `json:"highest_streak"`
	HighestStreakAt      *time.Time     `json:"highest_streak_at,omitempty"`
	HighestDailyPoints   int            `json:"highest_daily_points"`
	HighestDailyPointsAt *time.Time     `json:"highest_daily_points_at,omitempty"`
	CompletedQuests      int            `json:"completed_quests"`
	LastCompletedAt      *time.Time     `json:"last_completed_at,omitempty"`
	ActionsToday         map[string]int `json:"actions_today"`
	ActionsTotal         map[string]int `json:"actions_total"`
}

func New(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		actionsToday: make(map[string]int),
		actionsTotal: make(map[string]int),
		now:          now,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// rollover resets the daily counters when the calendar day has moved on
// since the last credit, then updates the streak for today. Called at the
// top of every mutation so a reader never sees stale daily numbers mixed
// with fresh totals.
func (l *Ledger) rollover(today time.Time) {
	switch {
	case l.lastCredit == nil:
		l.currentStreak = 1
	case sameDay(*l.lastCredit, today):
		// streak unchanged
	case sameDay(l.lastCredit.AddDate(0, 0, 1), today):
		l.currentStreak++
		l.resetDaily()
	default:
		l.currentStreak = 1
		l.resetDaily()
	}

	t := today
	l.lastCredit = &t

	if l.currentStreak > l.highestStreak {
		l.highestStreak = l.currentStreak
		l.highestStreakAt = &t
	}
}

func (l *Ledger) resetDaily() {
	l.todayPoints = 0
	l.actionsToday = make(map[string]int)
}

// AddAction credits one verified action under tag. A credited action
// marks the day for streak purposes even when no points are paid out yet.
func (l *Ledger) AddAction(tag string) {
	now := l.now()
	l.rollover(now)
	l.actionsToday[tag]++
	l.actionsTotal[tag]++
}

// AddPoints adds n to the running totals and updates the daily record
// high when today's sum strictly beats it.
func (l *Ledger) AddPoints(n int) error {
	if n < 0 {
		return ErrNegativePoints
	}
	now := l.now()
	l.rollover(now)

	l.totalPoints += n
	l.todayPoints += n

	if l.todayPoints > l.highestDailyPoints {
		l.highestDailyPoints = l.todayPoints
		t := now
		l.highestDailyPointsAt = &t
	}
	return nil
}

// CompleteQuest bumps the lifetime completion count.
func (l *Ledger) CompleteQuest() {
	now := l.now()
	l.completedQuests++
	l.lastCompletedAt = &now
}

func (l *Ledger) TotalPoints() int {
	return l.totalPoints
}

// Snapshot copies the ledger state. Daily figures read as zero when the
// last credited day is not today; streak reads as broken when the last
// credited day is before yesterday.
func (l *Ledger) Snapshot() Snapshot {
	now := l.now()

	s := Snapshot{
		TotalPoints:          l.totalPoints,
		TodayPoints:          l.todayPoints,
		CurrentStreak:        l.currentStreak,
		HighestStreak:        l.highestStreak,
		HighestStreakAt:      l.highestStreakAt,
		HighestDailyPoints:   l.highestDailyPoints,
		HighestDailyPointsAt: l.highestDailyPointsAt,
		CompletedQuests:      l.completedQuests,
		LastCompletedAt:      l.lastCompletedAt,
		ActionsToday:         make(map[string]int, len(l.actionsToday)),
		ActionsTotal:         make(map[string]int, len(l.actionsTotal)),
	}

	if l.lastCredit == nil || !sameDay(*l.lastCredit, now) {
		s.TodayPoints = 0
	} else {
		for tag, n := range l.actionsToday {
			s.ActionsToday[tag] = n
		}
	}
	if l.lastCredit != nil &&
		!sameDay(*l.lastCredit, now) &&
		!sameDay(l.lastCredit.AddDate(0, 0, 1), now) {
		s.CurrentStreak = 0
	}
	for tag, n := range l.actionsTotal {
		s.ActionsTotal[tag] = n
	}
	return s
}
