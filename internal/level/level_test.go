package level

import "testing"

func TestOfZero(t *testing.T) {
	l := Of(0)
	if l.Number != 1 {
		t.Errorf("expected level 1, got %d", l.Number)
	}
	if l.PointsToNext != 100 {
		t.Errorf("expected 100 points to next, got %d", l.PointsToNext)
	}
	if l.Progress != 0.0 {
		t.Errorf("expected progress 0.0, got %f", l.Progress)
	}
}

func TestOfThresholdBoundary(t *testing.T) {
	// Points equal to a cumulative sum belong to the next level.
	if got := Of(99).Number; got != 1 {
		t.Errorf("Of(99): expected level 1, got %d", got)
	}
	if got := Of(100).Number; got != 2 {
		t.Errorf("Of(100): expected level 2, got %d", got)
	}
	if got := Of(349).Number; got != 2 {
		t.Errorf("Of(349): expected level 2, got %d", got)
	}
	if got := Of(350).Number; got != 3 {
		t.Errorf("Of(350): expected level 3, got %d", got)
	}
}

func TestOfMaxLevel(t *testing.T) {
	// Cumulative sum of all ten thresholds is 15600.
	l := Of(15599)
	if l.Number != 10 {
		t.Errorf("Of(15599): expected level 10, got %d", l.Number)
	}
	if l.PointsToNext != 1 {
		t.Errorf("Of(15599): expected 1 point to next, got %d", l.PointsToNext)
	}

	for _, points := range []int{15600, 20000, 1_000_000} {
		l := Of(points)
		if l.Number != 10 {
			t.Errorf("Of(%d): expected level 10, got %d", points, l.Number)
		}
		if l.PointsToNext != 0 {
			t.Errorf("Of(%d): expected 0 points to next, got %d", points, l.PointsToNext)
		}
		if l.Progress != 1.0 {
			t.Errorf("Of(%d): expected progress 1.0, got %f", points, l.Progress)
		}
	}
}

func TestOfMonotonic(t *testing.T) {
	prev := 0
	for p := 0; p <= 16000; p++ {
		l := Of(p)
		if l.Number < 1 || l.Number > 10 {
			t.Fatalf("Of(%d): level %d out of range", p, l.Number)
		}
		if l.Number < prev {
			t.Fatalf("Of(%d): level decreased from %d to %d", p, prev, l.Number)
		}
		if l.Progress < 0 || l.Progress > 1 {
			t.Fatalf("Of(%d): progress %f out of range", p, l.Progress)
		}
		prev = l.Number
	}
}

func TestOfNegativeClamped(t *testing.T) {
	if got := Of(-50); got != Of(0) {
		t.Errorf("negative points should clamp to zero, got %+v", got)
	}
}
