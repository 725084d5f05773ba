package leaderboard

import (
	"sort"

	"github.com/google/uuid"
)

// Entry mirrors one record in the remote leaderboard store. The remote
// side is authoritative for every field it carries.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	UserID        string    `json:"user_id"`
	DailyPoints   int       `json:"daily_points"`
	AllTimePoints int       `json:"all_time_points"`
}

// RankedEntry is an entry with its 1-based position in a sorted view.
type RankedEntry struct {
	Entry
	Rank int `json:"rank"`
}

// Board is the client-facing shape of one sorted view.
type Board struct {
	Entries      []RankedEntry `json:"entries"`
	UserPosition *RankedEntry  `json:"user_position"`
	TotalUsers   int           `json:"total_users"`
}

// Cache is the local mirror of the remote snapshot, keyed by the remote
// identity. Upserts replace fields wholesale, so merging the same
// snapshot any number of times, in any order, lands in the same state.
// Not safe for concurrent use; the sync service holds the lock.
type Cache struct {
	entries map[uuid.UUID]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[uuid.UUID]Entry)}
}

func (c *Cache) Upsert(e Entry) {
	c.entries[e.ID] = e
}

// Replace drops the local mapping and installs a fresh snapshot; the only
// way a locally cached entry ever disappears.
func (c *Cache) Replace(entries []Entry) {
	c.entries = make(map[uuid.UUID]Entry, len(entries))
	for _, e := range entries {
		c.entries[e.ID] = e
	}
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// DailySorted recomputes the daily view from the current mapping,
// descending by daily points. Remote ID breaks ties so the ordering is
// stable across calls.
func (c *Cache) DailySorted() []Entry {
	return c.sorted(func(a, b Entry) bool {
		if a.DailyPoints != b.DailyPoints {
			return a.DailyPoints > b.DailyPoints
		}
		return a.ID.String() < b.ID.String()
	})
}

// AllTimeSorted recomputes the all-time view, descending by all-time
// points.
func (c *Cache) AllTimeSorted() []Entry {
	return c.sorted(func(a, b Entry) bool {
		if a.AllTimePoints != b.AllTimePoints {
			return a.AllTimePoints > b.AllTimePoints
		}
		return a.ID.String() < b.ID.String()
	})
}

func (c *Cache) sorted(less func(a, b Entry) bool) []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// BuildBoard ranks a sorted view and locates the owning user's position,
// if present.
func BuildBoard(view []Entry, userID string) *Board {
	board := &Board{
		Entries:    make([]RankedEntry, 0, len(view)),
		TotalUsers: len(view),
	}
	for i, e := range view {
		ranked := RankedEntry{Entry: e, Rank: i + 1}
		board.Entries = append(board.Entries, ranked)
		if e.UserID == userID {
			pos := ranked
			board.UserPosition = &pos
		}
	}
	return board
}
