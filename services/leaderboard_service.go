package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ecoQuestAPI/internal/leaderboard"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RemoteStore reads the full remote leaderboard snapshot. The engine
// never writes to it.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]leaderboard.Entry, error)
}

// PostgresStore reads the shared leaderboard collection.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FetchAll(ctx context.Context) ([]leaderboard.Entry, error) {
	query := `
	SELECT id, display_name, user_id, daily_points, all_time_points
	FROM leaderboard_entries
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard snapshot: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.UserID, &e.DailyPoints, &e.AllTimePoints); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}
	return entries, nil
}

// LeaderboardService merges remote snapshots into the local cache and
// serves the sorted views. A failed fetch leaves the cache at its
// last-known-good state; the next explicit trigger retries, this service
// never retries on its own.
type LeaderboardService struct {
	store      RemoteStore
	minDisplay time.Duration

	mu         sync.Mutex
	cache      *leaderboard.Cache
	loading    bool
	lastSynced time.Time
}

func NewLeaderboardService(store RemoteStore) *LeaderboardService {
	return &LeaderboardService{
		store: store,
		// keeps the loading state visible long enough to avoid flicker
		minDisplay: 400 * time.Millisecond,
		cache:      leaderboard.NewCache(),
	}
}

// SetMinDisplay overrides the minimum loading-state duration, for tests.
func (s *LeaderboardService) SetMinDisplay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minDisplay = d
}

// Fetch pulls the full remote snapshot and upserts every entry into the
// local mapping. The loading flag clears only after the fetch settles and
// the minimum display window has passed. Concurrent calls are safe: each
// upsert replaces one key wholesale, so overlapping merges of the same
// snapshot commute.
func (s *LeaderboardService) Fetch(ctx context.Context) error {
	started := time.Now()

	s.mu.Lock()
	minDisplay := s.minDisplay
	s.loading = true
	s.mu.Unlock()

	defer func() {
		if remain := minDisplay - time.Since(started); remain > 0 {
			time.Sleep(remain)
		}
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	entries, err := s.store.FetchAll(ctx)
	if err != nil {
		log.Printf("Leaderboard sync failed, keeping last known snapshot: %v", err)
		leaderboardSyncs.WithLabelValues("failed").Inc()
		return fmt.Errorf("leaderboard sync failed: %w", err)
	}

	s.mu.Lock()
	for _, e := range entries {
		s.cache.Upsert(e)
	}
	s.lastSynced = time.Now()
	s.mu.Unlock()

	leaderboardSyncs.WithLabelValues("ok").Inc()
	return nil
}

// Resync replaces the local mapping with a fresh snapshot, dropping
// entries the remote no longer has.
func (s *LeaderboardService) Resync(ctx context.Context) error {
	entries, err := s.store.FetchAll(ctx)
	if err != nil {
		leaderboardSyncs.WithLabelValues("failed").Inc()
		return fmt.Errorf("leaderboard resync failed: %w", err)
	}

	s.mu.Lock()
	s.cache.Replace(entries)
	s.lastSynced = time.Now()
	s.mu.Unlock()

	leaderboardSyncs.WithLabelValues("ok").Inc()
	return nil
}

func (s *LeaderboardService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *LeaderboardService) LastSynced() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

// Daily builds the daily view, ranked, with the session user's position.
func (s *LeaderboardService) Daily(userID string) *leaderboard.Board {
	s.mu.Lock()
	view := s.cache.DailySorted()
	s.mu.Unlock()
	return leaderboard.BuildBoard(view, userID)
}

// AllTime builds the all-time view, ranked, with the session user's
// position.
func (s *LeaderboardService) AllTime(userID string) *leaderboard.Board {
	s.mu.Lock()
	view := s.cache.AllTimeSorted()
	s.mu.Unlock()
	return leaderboard.BuildBoard(view, userID)
}
