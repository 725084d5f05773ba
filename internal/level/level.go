package level

// Level is derived from total points on demand, never stored.
type Level struct {
	Number       int     `json:"number"`
	Title        string  `json:"title"`
	PointsToNext int     `json:"points_to_next"`
	Progress     float64 `json:"progress"`
}

// Per-level point requirements, ascending. A player sits at the first
// level whose cumulative sum strictly exceeds their total points; points
// exactly equal to a cumulative sum already belong to the next level.
var thresholds = [10]int{100, 250, 500, 750, 1000, 1500, 2000, 2500, 3000, 4000}

var titles = [10]string{
	"Seedling",
	"Sprout",
	"Sapling",
	"Gardener",
	"Composter",
	"Recycler",
	"Trailblazer",
	"Conservationist",
	"Eco Warrior",
	"Planet Guardian",
}

const MaxLevel = 10

// Of maps cumulative points to a level. Negative input is a caller bug;
// it is clamped to zero rather than panicking on production paths.
func Of(totalPoints int) Level {
	if totalPoints < 0 {
		totalPoints = 0
	}

	accumulated := 0
	for i, step := range thresholds {
		accumulated += step
		if totalPoints < accumulated {
			toNext := accumulated - totalPoints
			progress := float64(totalPoints) / float64(totalPoints+toNext)
			if progress < 0 {
				progress = 0
			}
			if progress > 1 {
				progress = 1
			}
			return Level{
				Number:       i + 1,
				Title:        titles[i],
				PointsToNext: toNext,
				Progress:     progress,
			}
		}
	}

	return Level{
		Number:       MaxLevel,
		Title:        titles[MaxLevel-1],
		PointsToNext: 0,
		Progress:     1.0,
	}
}
