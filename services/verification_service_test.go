package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ecoQuestAPI/internal/quest"
	"ecoQuestAPI/internal/verification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	mu     sync.Mutex
	answer string
	err    error
	gate   chan struct{} // when set, Classify blocks until closed
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, imageURI, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	answer, err := f.answer, f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return answer, err
}

func newTestPipeline(classifier Classifier) (*ProgressionService, *VerificationService) {
	progression := NewProgressionService(quest.DefaultCatalog())
	return progression, NewVerificationService(progression, classifier)
}

func TestSubmitAffirmedCreditsQuest(t *testing.T) {
	progression, svc := newTestPipeline(&fakeClassifier{answer: "Yes, clearly."})
	ctx := context.Background()

	// plant-tree requires a single action
	out, err := svc.Submit(ctx, "user_a", "plant-tree", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, verification.VerdictAffirmed, out.Verdict)
	require.NotNil(t, out.Credit)
	assert.True(t, out.Credit.Completed)
	assert.Equal(t, 1*quest.PointsPerAction, out.Credit.PointsAwarded)
	assert.Equal(t, 1*quest.PointsPerAction, out.Credit.Ledger.TotalPoints)
	assert.Contains(t, out.Credit.NewBadges, "first-quest")

	stats := progression.Stats("user_a")
	assert.Equal(t, 1, stats.CompletedQuests)
}

func TestFiveAffirmedVerdictsCompleteOnce(t *testing.T) {
	progression, svc := newTestPipeline(&fakeClassifier{answer: "yes"})
	ctx := context.Background()

	// recycle-plastic requires 5 actions
	var last *SubmitOutcome
	for i := 0; i < 5; i++ {
		out, err := svc.Submit(ctx, "user_b", "recycle-plastic", uuid.New(), []byte("img"))
		require.NoError(t, err)
		require.NotNil(t, out.Credit)
		if i < 4 {
			assert.False(t, out.Credit.Completed)
			assert.Zero(t, out.Credit.PointsAwarded)
		}
		last = out
	}

	assert.True(t, last.Credit.Completed)
	assert.Equal(t, 5*quest.PointsPerAction, last.Credit.PointsAwarded)
	assert.Equal(t, 5*quest.PointsPerAction, progression.Stats("user_b").TotalPoints)

	// A spurious extra verdict must not pay out again.
	out, err := svc.Submit(ctx, "user_b", "recycle-plastic", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.False(t, out.Credit.Applied)
	assert.Equal(t, 5*quest.PointsPerAction, progression.Stats("user_b").TotalPoints)
}

func TestSameCaptureNeverDoubleCredits(t *testing.T) {
	progression, svc := newTestPipeline(&fakeClassifier{answer: "yes"})
	ctx := context.Background()
	capture := uuid.New()

	out, err := svc.Submit(ctx, "user_c", "recycle-plastic", capture, []byte("img"))
	require.NoError(t, err)
	assert.True(t, out.Credit.Applied)
	assert.Equal(t, 1, out.Credit.Quest.Count)

	out, err = svc.Submit(ctx, "user_c", "recycle-plastic", capture, []byte("img"))
	require.NoError(t, err)
	assert.False(t, out.Credit.Applied)
	assert.Equal(t, 1, out.Credit.Quest.Count)
	assert.Zero(t, progression.Stats("user_c").TotalPoints)
}

func TestSubmitRejectedMutatesNothing(t *testing.T) {
	progression, svc := newTestPipeline(&fakeClassifier{answer: "No, that is a sandwich."})
	ctx := context.Background()

	out, err := svc.Submit(ctx, "user_d", "recycle-plastic", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, verification.VerdictRejected, out.Verdict)
	assert.Nil(t, out.Credit)
	assert.NotEmpty(t, out.Notice)

	stats := progression.Stats("user_d")
	assert.Zero(t, stats.TotalPoints)
	assert.Zero(t, stats.CompletedQuests)
	for _, q := range progression.QuestBoard("user_d") {
		assert.Zero(t, q.Count)
	}

	msg, active := svc.Notice("user_d")
	assert.True(t, active)
	assert.Equal(t, out.Notice, msg)
}

func TestSubmitFailedDistinctFromRejected(t *testing.T) {
	progression, svc := newTestPipeline(&fakeClassifier{err: context.DeadlineExceeded})
	ctx := context.Background()

	out, err := svc.Submit(ctx, "user_e", "recycle-plastic", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, verification.VerdictFailed, out.Verdict)
	assert.NotEmpty(t, out.Reason)
	assert.Nil(t, out.Credit)
	assert.Zero(t, progression.Stats("user_e").TotalPoints)
}

func TestNoticeAutoClears(t *testing.T) {
	_, svc := newTestPipeline(&fakeClassifier{answer: "no"})

	var mu sync.Mutex
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})

	_, err := svc.Submit(context.Background(), "user_f", "recycle-plastic", uuid.New(), []byte("img"))
	require.NoError(t, err)

	_, active := svc.Notice("user_f")
	assert.True(t, active)

	mu.Lock()
	current = current.Add(5 * time.Second)
	mu.Unlock()

	_, active = svc.Notice("user_f")
	assert.False(t, active, "notice should clear after its display duration")
}

func TestSecondSubmissionWhileInFlightRefused(t *testing.T) {
	gate := make(chan struct{})
	classifier := &fakeClassifier{answer: "yes", gate: gate}
	_, svc := newTestPipeline(classifier)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := svc.Submit(context.Background(), "user_g", "recycle-plastic", uuid.New(), []byte("img"))
		done <- err
	}()

	<-started
	// Give the goroutine time to take the guard before racing it.
	require.Eventually(t, func() bool {
		_, err := svc.Submit(context.Background(), "user_g", "recycle-plastic", uuid.New(), []byte("img"))
		return err == ErrVerificationInFlight
	}, time.Second, 5*time.Millisecond)

	close(gate)
	require.NoError(t, <-done)

	// Guard must be free again once the first call settled.
	out, err := svc.Submit(context.Background(), "user_g", "recycle-plastic", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, verification.VerdictAffirmed, out.Verdict)
}

func TestAbandonedSubmissionClearsGuard(t *testing.T) {
	gate := make(chan struct{})
	_, svc := newTestPipeline(&fakeClassifier{answer: "yes", gate: gate})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *SubmitOutcome, 1)
	go func() {
		out, _ := svc.Submit(ctx, "user_h", "plant-tree", uuid.New(), []byte("img"))
		done <- out
	}()

	// Abandon the capture flow before a verdict arrives.
	cancel()
	out := <-done
	require.NotNil(t, out)
	assert.Equal(t, verification.VerdictFailed, out.Verdict)

	// The quest is not wedged: a fresh submission goes through.
	close(gate)
	fresh, err := svc.Submit(context.Background(), "user_h", "plant-tree", uuid.New(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, verification.VerdictAffirmed, fresh.Verdict)
}

func TestSubmitValidation(t *testing.T) {
	_, svc := newTestPipeline(&fakeClassifier{answer: "yes"})

	_, err := svc.Submit(context.Background(), "user_i", "plant-tree", uuid.New(), nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = svc.Submit(context.Background(), "user_i", "no-such-quest", uuid.New(), []byte("img"))
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestHTTPClassifier(t *testing.T) {
	var gotImage, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Image  string `json:"image"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotImage, gotPrompt = body.Image, body.Prompt
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "Yes, it is."}`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL)
	answer, err := c.Classify(context.Background(), "data:image/jpeg;base64,AAAA", "Is this a tree?")
	require.NoError(t, err)
	assert.Equal(t, "Yes, it is.", answer)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", gotImage)
	assert.Equal(t, "Is this a tree?", gotPrompt)
}

func TestHTTPClassifierBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL)
	_, err := c.Classify(context.Background(), "data:image/jpeg;base64,AAAA", "Is this a tree?")
	assert.Error(t, err)
}
