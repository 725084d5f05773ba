package services

import (
	"errors"
	"sync"
	"time"

	"ecoQuestAPI/internal/awards"
	"ecoQuestAPI/internal/ledger"
	"ecoQuestAPI/internal/level"
	"ecoQuestAPI/internal/quest"

	"github.com/google/uuid"
)

var ErrQuestNotFound = errors.New("quest not found")

// QuestStatus is the client-facing view of one quest's progress.
type QuestStatus struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Category  string      `json:"category"`
	Count     int         `json:"count"`
	Required  int         `json:"required"`
	State     quest.State `json:"state"`
	Completed bool        `json:"completed"`
	Points    int         `json:"points"`
	Fraction  float64     `json:"fraction"`
}

// CreditOutcome reports everything a single credit changed, captured
// atomically so the caller never sees points without the matching streak
// update.
type CreditOutcome struct {
	Applied       bool            `json:"applied"`
	Completed     bool            `json:"completed"`
	PointsAwarded int             `json:"points_awarded"`
	Quest         QuestStatus     `json:"quest"`
	Ledger        ledger.Snapshot `json:"ledger"`
	Level         level.Level     `json:"level"`
	NewBadges     []string        `json:"new_badges,omitempty"`
}

// ProgressionService owns all per-user engine state. One lock guards
// every mutation, so each credit (count, points, streak, records) lands
// as a single step from any reader's point of view.
type ProgressionService struct {
	mu      sync.Mutex
	catalog *quest.Catalog
	users   map[string]*userState
	now     func() time.Time
}

type userState struct {
	quests map[string]*quest.Progress
	ledger *ledger.Ledger
}

func NewProgressionService(catalog *quest.Catalog) *ProgressionService {
	return &ProgressionService{
		catalog: catalog,
		users:   make(map[string]*userState),
		now:     time.Now,
	}
}

// SetClock overrides the time source for ledgers created afterwards.
// Tests call this before any user activity.
func (s *ProgressionService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *ProgressionService) user(userID string) *userState {
	u, ok := s.users[userID]
	if !ok {
		u = &userState{
			quests: make(map[string]*quest.Progress),
			ledger: ledger.New(s.now),
		}
		s.users[userID] = u
	}
	return u
}

func (s *ProgressionService) progress(u *userState, questID string) (*quest.Progress, error) {
	if p, ok := u.quests[questID]; ok {
		return p, nil
	}
	def, ok := s.catalog.Get(questID)
	if !ok {
		return nil, ErrQuestNotFound
	}
	p := quest.NewProgress(def)
	u.quests[questID] = p
	return p, nil
}

// Definition resolves a quest ID against the catalog.
func (s *ProgressionService) Definition(questID string) (*quest.Definition, error) {
	def, ok := s.catalog.Get(questID)
	if !ok {
		return nil, ErrQuestNotFound
	}
	return def, nil
}

func statusOf(p *quest.Progress) QuestStatus {
	return QuestStatus{
		ID:        p.Definition.ID,
		Title:     p.Definition.Title,
		Category:  p.Definition.Category,
		Count:     p.Count,
		Required:  p.Definition.Required,
		State:     p.State(),
		Completed: p.IsCompleted(),
		Points:    p.Definition.Points(),
		Fraction:  p.Fraction(),
	}
}

// QuestBoard lists every catalog quest with the user's progress.
func (s *ProgressionService) QuestBoard(userID string) []QuestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	board := make([]QuestStatus, 0, len(s.catalog.All()))
	for _, def := range s.catalog.All() {
		p, _ := s.progress(u, def.ID)
		board = append(board, statusOf(p))
	}
	return board
}

// Credit applies one verified (or manually credited) capture to a quest.
// The whole transition, including the single completion payout and the
// award recheck, happens under the lock.
func (s *ProgressionService) Credit(userID, questID string, captureID uuid.UUID) (*CreditOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	p, err := s.progress(u, questID)
	if err != nil {
		return nil, err
	}

	before := awards.UnlockedIDs(u.ledger.Snapshot())

	res := p.Credit(captureID)
	if res.Applied {
		u.ledger.AddAction(p.Definition.ActionTag)
	}
	if res.Completed {
		if err := u.ledger.AddPoints(res.PointsAwarded); err != nil {
			return nil, err
		}
		u.ledger.CompleteQuest()
	}

	snap := u.ledger.Snapshot()
	out := &CreditOutcome{
		Applied:       res.Applied,
		Completed:     res.Completed,
		PointsAwarded: res.PointsAwarded,
		Quest:         statusOf(p),
		Ledger:        snap,
		Level:         level.Of(snap.TotalPoints),
		NewBadges:     newlyUnlocked(before, awards.UnlockedIDs(snap)),
	}
	return out, nil
}

func newlyUnlocked(before, after []string) []string {
	seen := make(map[string]bool, len(before))
	for _, id := range before {
		seen[id] = true
	}
	var fresh []string
	for _, id := range after {
		if !seen[id] {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

// Stats snapshots the user's ledger.
func (s *ProgressionService) Stats(userID string) ledger.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).ledger.Snapshot()
}

// Level derives the user's level from their current total points.
func (s *ProgressionService) Level(userID string) level.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return level.Of(s.user(userID).ledger.TotalPoints())
}

// Achievements evaluates every badge against the user's ledger.
func (s *ProgressionService) Achievements(userID string) []awards.BadgeWithStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return awards.Evaluate(s.user(userID).ledger.Snapshot())
}
