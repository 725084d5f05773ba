package quest

import (
	"github.com/google/uuid"
)

type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED" // terminal
)

// PointsPerAction is the fixed reward per required action; a quest is
// worth Required * PointsPerAction, paid out once on completion.
const PointsPerAction = 10

type Definition struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Required  int    `json:"required"`
	Category  string `json:"category"`
	ActionTag string `json:"action_tag"`
	// Prompt is the yes/no question sent to the image classifier. It is
	// never exposed to clients.
	Prompt string `json:"-"`
}

func (d *Definition) Points() int {
	return d.Required * PointsPerAction
}

// Progress is the mutable per-user counter for one quest. The count only
// ever moves forward, one credit per physical capture.
type Progress struct {
	Definition *Definition
	Count      int

	applied map[uuid.UUID]struct{}
}

func NewProgress(def *Definition) *Progress {
	return &Progress{
		Definition: def,
		applied:    make(map[uuid.UUID]struct{}),
	}
}

func (p *Progress) State() State {
	switch {
	case p.Count >= p.Definition.Required:
		return StateCompleted
	case p.Count > 0:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

func (p *Progress) IsCompleted() bool {
	return p.Count >= p.Definition.Required
}

func (p *Progress) Fraction() float64 {
	f := float64(p.Count) / float64(p.Definition.Required)
	if f > 1 {
		f = 1
	}
	return f
}

// CreditResult reports what a single credit attempt actually did.
type CreditResult struct {
	// Applied is false when the capture was already credited or the
	// quest was already completed.
	Applied bool
	// Completed is true only for the credit that crossed the quest from
	// Required-1 to Required.
	Completed bool
	// PointsAwarded is the full quest reward on the completing credit,
	// zero otherwise.
	PointsAwarded int
}

// Credit applies one verified capture. Replaying the same capture ID is
// a no-op, as is any credit after completion, so the count can never
// race past Required and points can never pay out twice.
func (p *Progress) Credit(captureID uuid.UUID) CreditResult {
	if p.IsCompleted() {
		return CreditResult{}
	}
	if _, seen := p.applied[captureID]; seen {
		return CreditResult{}
	}

	p.applied[captureID] = struct{}{}
	p.Count++

	res := CreditResult{Applied: true}
	if p.IsCompleted() {
		res.Completed = true
		res.PointsAwarded = p.Definition.Points()
	}
	return res
}
