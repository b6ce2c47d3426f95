package points

import (
	"math"
	"testing"
)

func TestApplyNoLevelUp(t *testing.T) {
	p := NewProgress()
	gained, err := Apply(&p, 50)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if gained != 0 {
		t.Errorf("Expected 0 levels gained, got %d", gained)
	}
	if p.Level != 1 || p.CurrentLevelPoints != 50 || p.PointsToNextLevel != 100 {
		t.Errorf("Unexpected progress: %+v", p)
	}
}

func TestApplySingleLevelUp(t *testing.T) {
	p := NewProgress()
	gained, err := Apply(&p, 100)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if gained != 1 {
		t.Errorf("Expected 1 level gained, got %d", gained)
	}
	if p.Level != 2 {
		t.Errorf("Expected level 2, got %d", p.Level)
	}
	if p.CurrentLevelPoints != 0 {
		t.Errorf("Expected 0 leftover points, got %d", p.CurrentLevelPoints)
	}
	if p.PointsToNextLevel != 150 {
		t.Errorf("Expected threshold 150, got %d", p.PointsToNextLevel)
	}
}

func TestApplyMultiLevelUp(t *testing.T) {
	// 250 points from a fresh profile consumes thresholds 100 and 150,
	// landing exactly at level 3 with nothing left over.
	p := NewProgress()
	gained, err := Apply(&p, 250)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if gained != 2 {
		t.Errorf("Expected 2 levels gained, got %d", gained)
	}
	if p.Level != 3 {
		t.Errorf("Expected level 3, got %d", p.Level)
	}
	if p.CurrentLevelPoints != 0 {
		t.Errorf("Expected 0 leftover points, got %d", p.CurrentLevelPoints)
	}
	if p.PointsToNextLevel != 225 {
		t.Errorf("Expected threshold 225, got %d", p.PointsToNextLevel)
	}
}

func TestApplyZeroIsNoOp(t *testing.T) {
	p := Progress{Level: 4, CurrentLevelPoints: 42, PointsToNextLevel: 337}
	before := p
	gained, err := Apply(&p, 0)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if gained != 0 || p != before {
		t.Errorf("Zero delta changed progress: before=%+v after=%+v", before, p)
	}
}

func TestApplyNegativeRejected(t *testing.T) {
	p := NewProgress()
	before := p
	if _, err := Apply(&p, -10); err != ErrNegativeDelta {
		t.Errorf("Expected ErrNegativeDelta, got %v", err)
	}
	if p != before {
		t.Errorf("Negative delta mutated progress: %+v", p)
	}
}

func TestThresholdGrowthSequence(t *testing.T) {
	// Threshold after k level-ups must equal repeated floor(x*1.5) from 100.
	want := 100.0
	p := NewProgress()
	for k := 0; k <= 10; k++ {
		if p.PointsToNextLevel != int(want) {
			t.Errorf("k=%d: expected threshold %d, got %d", k, int(want), p.PointsToNextLevel)
		}
		// Award exactly the current threshold to force one level-up
		gained, err := Apply(&p, p.PointsToNextLevel)
		if err != nil {
			t.Fatalf("k=%d: Apply returned error: %v", k, err)
		}
		if gained != 1 {
			t.Fatalf("k=%d: expected exactly 1 level-up, got %d", k, gained)
		}
		want = math.Floor(want * 1.5)
	}
}

func TestInvariantHoldsAcrossSequences(t *testing.T) {
	deltas := []int{0, 1, 9, 10, 50, 99, 100, 101, 250, 777, 5000, 3, 12345}
	p := NewProgress()
	for i, d := range deltas {
		if _, err := Apply(&p, d); err != nil {
			t.Fatalf("step %d: Apply returned error: %v", i, err)
		}
		if p.CurrentLevelPoints < 0 || p.CurrentLevelPoints >= p.PointsToNextLevel {
			t.Errorf("step %d: invariant violated: %+v", i, p)
		}
		if p.Level < 1 {
			t.Errorf("step %d: level below 1: %+v", i, p)
		}
	}
}
