// Package points implements the level progression arithmetic: point deltas
// are consumed against an exponentially growing per-level threshold.
package points

import "errors"

const (
	// InitialLevel and InitialThreshold are the defaults for a fresh profile.
	InitialLevel     = 1
	InitialThreshold = 100
)

// ErrNegativeDelta is returned when a caller tries to apply a point
// deduction. Deductions have no defined semantics here.
var ErrNegativeDelta = errors.New("points: negative delta not allowed")

// Progress is the level-relevant slice of a gamification profile
type Progress struct {
	Level              int `bson:"level" json:"level"`
	CurrentLevelPoints int `bson:"currentLevelPoints" json:"currentLevelPoints"`
	PointsToNextLevel  int `bson:"pointsToNextLevel" json:"pointsToNextLevel"`
}

// NewProgress returns progress at level 1 with the initial threshold
func NewProgress() Progress {
	return Progress{
		Level:             InitialLevel,
		PointsToNextLevel: InitialThreshold,
	}
}

// Apply adds delta to CurrentLevelPoints and resolves any level-ups:
// while the accumulated points reach the threshold, the threshold is
// consumed, the level increments, and the next threshold grows to
// floor(threshold * 1.5). Returns the number of levels gained.
//
// A zero delta is a no-op. The loop terminates because the threshold is
// at least 1 and CurrentLevelPoints strictly decreases each iteration.
func Apply(p *Progress, delta int) (int, error) {
	if delta < 0 {
		return 0, ErrNegativeDelta
	}
	if delta == 0 {
		return 0, nil
	}

	p.CurrentLevelPoints += delta
	gained := 0
	for p.CurrentLevelPoints >= p.PointsToNextLevel {
		p.CurrentLevelPoints -= p.PointsToNextLevel
		p.Level++
		gained++
		// floor(threshold * 1.5) in integer arithmetic
		p.PointsToNextLevel += p.PointsToNextLevel / 2
	}
	return gained, nil
}
