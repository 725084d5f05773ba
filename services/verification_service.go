package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"ecoQuestAPI/internal/verification"

	"github.com/google/uuid"
)

var (
	ErrVerificationInFlight = errors.New("a verification is already in flight for this quest")
	ErrEmptyImage           = errors.New("capture image is empty")
)

// Classifier answers a yes/no question about an image. Implementations
// are expected to honor context cancellation.
type Classifier interface {
	Classify(ctx context.Context, imageURI, prompt string) (string, error)
}

// HTTPClassifier talks to the external classification service: POST a
// JSON body with the image data URI and the prompt, read back a free-text
// answer.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, imageURI, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"image":  imageURI,
		"prompt": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse classifier response: %w", err)
	}
	return parsed.Answer, nil
}

// SubmitOutcome is the settled result of one capture submission. Credit
// is non-nil only on an affirmed verdict.
type SubmitOutcome struct {
	Verdict verification.Verdict `json:"verdict"`
	Reason  string               `json:"reason,omitempty"`
	Notice  string               `json:"notice,omitempty"`
	Credit  *CreditOutcome       `json:"credit,omitempty"`
}

type notice struct {
	message string
	expires time.Time
}

// VerificationService runs the capture-to-credit pipeline. The classifier
// call happens outside any lock; only the fast verdict application takes
// the progression lock. One verification per quest per user at a time.
type VerificationService struct {
	progression *ProgressionService
	classifier  Classifier
	timeout     time.Duration
	noticeTTL   time.Duration
	now         func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
	notices  map[string]notice
}

func NewVerificationService(progression *ProgressionService, classifier Classifier) *VerificationService {
	return &VerificationService{
		progression: progression,
		classifier:  classifier,
		timeout:     30 * time.Second,
		noticeTTL:   4 * time.Second,
		now:         time.Now,
		inflight:    make(map[string]bool),
		notices:     make(map[string]notice),
	}
}

// SetClock overrides the time source, for tests.
func (s *VerificationService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func guardKey(userID, questID string) string {
	return userID + "/" + questID
}

func (s *VerificationService) acquire(userID, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := guardKey(userID, questID)
	if s.inflight[key] {
		return ErrVerificationInFlight
	}
	s.inflight[key] = true
	return nil
}

func (s *VerificationService) release(userID, questID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, guardKey(userID, questID))
}

// Submit verifies one capture against a quest's prompt and, on an
// affirmed verdict, drives the quest credit. Rejected and failed verdicts
// mutate nothing; they raise a transient notice and return normally. The
// in-flight guard always clears when the call settles, including on
// context cancellation, so an abandoned submission never wedges a quest.
func (s *VerificationService) Submit(ctx context.Context, userID, questID string, captureID uuid.UUID, image []byte) (*SubmitOutcome, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	def, err := s.progression.Definition(questID)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(userID, questID); err != nil {
		return nil, err
	}
	defer s.release(userID, questID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.classifier.Classify(ctx, verification.DataURI(image), def.Prompt)
	if err != nil {
		log.Printf("Verification failed for quest %s: %v", questID, err)
		verificationVerdicts.WithLabelValues("failed").Inc()
		msg := s.raiseNotice(userID, "We couldn't verify your photo. Please try again.")
		return &SubmitOutcome{
			Verdict: verification.VerdictFailed,
			Reason:  err.Error(),
			Notice:  msg,
		}, nil
	}

	if verification.ParseAnswer(answer) != verification.VerdictAffirmed {
		verificationVerdicts.WithLabelValues("rejected").Inc()
		msg := s.raiseNotice(userID, "That photo didn't match the quest. Snap another one!")
		return &SubmitOutcome{
			Verdict: verification.VerdictRejected,
			Notice:  msg,
		}, nil
	}

	credit, err := s.progression.Credit(userID, questID, captureID)
	if err != nil {
		return nil, err
	}
	verificationVerdicts.WithLabelValues("affirmed").Inc()
	return &SubmitOutcome{
		Verdict: verification.VerdictAffirmed,
		Credit:  credit,
	}, nil
}

func (s *VerificationService) raiseNotice(userID, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[userID] = notice{
		message: message,
		expires: s.now().Add(s.noticeTTL),
	}
	return message
}

// Notice returns the user's current transient notice, if it has not yet
// expired. Reading an expired notice drops it.
func (s *VerificationService) Notice(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notices[userID]
	if !ok {
		return "", false
	}
	if s.now().After(n.expires) {
		delete(s.notices, userID)
		return "", false
	}
	return n.message, true
}
