package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types for point-granting events
const (
	TxLectureCompleted  = "lecture_completed"
	TxQuizPassed        = "quiz_passed"
	TxQuizPerfect       = "quiz_perfect"
	TxCourseCompleted   = "course_completed"
	TxDailyLogin        = "daily_login"
	TxStreakBonus       = "streak_bonus"
	TxFirstQuizPerfect  = "first_quiz_perfect"
	TxChallengeComplete = "challenge_completed"
	TxMilestoneReached  = "milestone_reached"
)

// Badge criteria kinds (closed contract)
const (
	CriteriaLecturesCompleted = "lectures_completed"
	CriteriaQuizzesPassed     = "quizzes_passed"
	CriteriaPerfectQuizzes    = "perfect_quizzes"
	CriteriaCoursesCompleted  = "courses_completed"
	CriteriaLevel             = "level"
	CriteriaStreak            = "streak"
)

// Badge categories and rarities
const (
	CategoryLearning    = "learning"
	CategoryAchievement = "achievement"
	CategoryStreak      = "streak"
	CategorySocial      = "social"
	CategorySpecial     = "special"

	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// EarnedBadge is a badge held by a profile. A badge is earned at most once.
type EarnedBadge struct {
	BadgeID  string    `bson:"badgeId" json:"badgeId"`
	EarnedAt time.Time `bson:"earnedAt" json:"earnedAt"`
	Progress int       `bson:"progress" json:"progress"`
}

// Milestone is an informational log entry on the profile
type Milestone struct {
	Type       string    `bson:"type" json:"type"`
	AchievedAt time.Time `bson:"achievedAt" json:"achievedAt"`
}

// GamificationProfile holds per-user cumulative gamification state.
// Created lazily on the first gamification event for a user.
type GamificationProfile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	TotalPoints        int                `bson:"totalPoints" json:"totalPoints"`
	Level              int                `bson:"level" json:"level"`
	CurrentLevelPoints int                `bson:"currentLevelPoints" json:"currentLevelPoints"`
	PointsToNextLevel  int                `bson:"pointsToNextLevel" json:"pointsToNextLevel"`

	CurrentStreak    int       `bson:"currentStreak" json:"currentStreak"`
	LongestStreak    int       `bson:"longestStreak" json:"longestStreak"`
	LastActivityDate time.Time `bson:"lastActivityDate" json:"lastActivityDate"`

	TotalLecturesCompleted int `bson:"totalLecturesCompleted" json:"totalLecturesCompleted"`
	TotalQuizzesPassed     int `bson:"totalQuizzesPassed" json:"totalQuizzesPassed"`
	TotalPerfectQuizzes    int `bson:"totalPerfectQuizzes" json:"totalPerfectQuizzes"`
	TotalCoursesCompleted  int `bson:"totalCoursesCompleted" json:"totalCoursesCompleted"`
	TotalStudyTimeMinutes  int `bson:"totalStudyTimeMinutes" json:"totalStudyTimeMinutes"`

	Badges     []EarnedBadge `bson:"badges" json:"badges"`
	Milestones []Milestone   `bson:"milestones" json:"milestones"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasBadge reports whether the profile already earned the given badge
func (p *GamificationProfile) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// TransactionMetadata links a point transaction back to its source entity
type TransactionMetadata struct {
	CourseID  string `bson:"courseId,omitempty" json:"courseId,omitempty"`
	LectureID string `bson:"lectureId,omitempty" json:"lectureId,omitempty"`
	QuizID    string `bson:"quizId,omitempty" json:"quizId,omitempty"`
}

// PointTransaction is an immutable audit record of a single point grant
type PointTransaction struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	Points      int                  `bson:"points" json:"points"`
	Type        string               `bson:"type" json:"type"`
	Description string               `bson:"description" json:"description"`
	Metadata    *TransactionMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// BadgeCriteria is a tagged predicate evaluated against profile counters
type BadgeCriteria struct {
	Type  string `bson:"type" json:"type"`
	Count int    `bson:"count" json:"count"`
}

// BadgeDefinition is a static catalog entry. Time-based badges (early_bird,
// night_owl) carry no criteria and are awarded by the time-of-day check only.
type BadgeDefinition struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BadgeID     string             `bson:"badgeId" json:"badgeId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Icon        string             `bson:"icon" json:"icon"`
	Category    string             `bson:"category" json:"category"`
	Rarity      string             `bson:"rarity" json:"rarity"`
	Criteria    *BadgeCriteria     `bson:"criteria,omitempty" json:"criteria,omitempty"`
	Points      int                `bson:"points" json:"points"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ChallengeGoal is a single sub-goal of a daily challenge
type ChallengeGoal struct {
	Type   string `bson:"type" json:"type"`
	Target int    `bson:"target" json:"target"`
	Points int    `bson:"points" json:"points"`
}

// DailyChallenge is a course-scoped, date-keyed set of sub-goals
type DailyChallenge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourseID  string             `bson:"courseId" json:"courseId"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	Goals     []ChallengeGoal    `bson:"goals" json:"goals"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserChallengeProgress tracks one user's counts toward a daily challenge
type UserChallengeProgress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ChallengeID primitive.ObjectID `bson:"challengeId" json:"challengeId"`
	Counts      map[string]int     `bson:"counts" json:"counts"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RateLimitEntry tracks rate limiting for award requests
type RateLimitEntry struct {
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Action      string             `bson:"action" json:"action"`
	Count       int                `bson:"count" json:"count"`
	WindowStart time.Time          `bson:"windowStart" json:"windowStart"`
}

// GamificationEvent is broadcast to connected clients via WebSocket
type GamificationEvent struct {
	Type      string    `json:"type"` // "points_awarded", "badge_awarded", "level_up", "streak_updated"
	UserID    string    `json:"userId"`
	BadgeID   string    `json:"badgeId,omitempty"`
	Points    int       `json:"points,omitempty"`
	NewTotal  int       `json:"newTotal,omitempty"`
	NewLevel  int       `json:"newLevel,omitempty"`
	Streak    int       `json:"streak,omitempty"`
	Action    string    `json:"action,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
